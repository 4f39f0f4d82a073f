package autoassume

import (
	"errors"
	"time"
)

var (
	ErrIdentityResolution     = errors.New("unable to resolve caller identity")
	ErrRoleNotFound           = errors.New("role not found")
	ErrMalformedPolicy        = errors.New("malformed trust policy document")
	ErrInsufficientPermission = errors.New("insufficient permission to update trust policy")
	ErrPolicyUpdate           = errors.New("trust policy update rejected")
	// ErrAssumeRejected is the retryable assume failure, typically the trust
	// policy write has not propagated yet.
	ErrAssumeRejected = errors.New("assume role rejected")
	// ErrAssumeDenied is a non-retryable assume failure.
	ErrAssumeDenied = errors.New("assume role denied")
)

// CallerIdentity is the ambient identity resolved once per invocation.
type CallerIdentity struct {
	ARN       string
	AccountID string
}

// Role is the target role as fetched from IAM. TrustUpdated records whether
// this invocation had to write the trust policy, repeat invocations for an
// already covered caller leave it false.
type Role struct {
	Name         string
	ARN          string
	TrustUpdated bool
}

// AWSCredentials is the credential_process compatible payload returned to
// the caller. Never persisted by this tool unless the caller opts into
// profile storage.
type AWSCredentials struct {
	Version         int
	AWSAccessKey    string    `json:"AccessKeyId"`
	AWSSecretKey    string    `json:"SecretAccessKey"`
	AWSSessionToken string    `json:"SessionToken"`
	PrincipalARN    string    `json:"-"`
	Expires         time.Time `json:"Expiration"`
}
