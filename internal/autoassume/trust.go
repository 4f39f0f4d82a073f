package autoassume

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/smithy-go"

	"github.com/bneutra/iam-auto-assume/internal/trustpolicy"
)

type roleTrustApi interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	UpdateAssumeRolePolicy(ctx context.Context, params *iam.UpdateAssumeRolePolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAssumeRolePolicyOutput, error)
}

// EnsureTrust makes sure callerArn may assume roleName. The read-check-write
// sequence is idempotent: an already covered caller results in zero writes
// and no propagation wait. A write replaces the whole document in one call
// and is never reverted by this tool.
func EnsureTrust(ctx context.Context, svc roleTrustApi, roleName, callerArn string, conf CredentialConfig) (Role, error) {
	resp, err := svc.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			return Role{}, fmt.Errorf("iam get-role %s: %s, %w", roleName, err, ErrRoleNotFound)
		}
		return Role{}, fmt.Errorf("iam get-role %s: %s, %w", roleName, err, ErrPolicyUpdate)
	}

	role := Role{Name: roleName, ARN: aws.ToString(resp.Role.Arn)}

	doc, err := decodeTrustPolicy(resp.Role.AssumeRolePolicyDocument)
	if err != nil {
		return Role{}, err
	}

	if doc.Covers(callerArn) {
		return role, nil
	}

	doc.Grant(callerArn)
	updated, err := doc.Marshal()
	if err != nil {
		return Role{}, fmt.Errorf("%s, %w", err, ErrMalformedPolicy)
	}

	if _, err := svc.UpdateAssumeRolePolicy(ctx, &iam.UpdateAssumeRolePolicyInput{
		RoleName:       aws.String(roleName),
		PolicyDocument: aws.String(string(updated)),
	}); err != nil {
		if isAccessDenied(err) {
			return Role{}, fmt.Errorf("iam update-assume-role-policy %s: %s, %w", roleName, err, ErrInsufficientPermission)
		}
		return Role{}, fmt.Errorf("iam update-assume-role-policy %s: %s, %w", roleName, err, ErrPolicyUpdate)
	}
	role.TrustUpdated = true

	// IAM is eventually consistent, an assume attempt issued straight after
	// the write can observe the stale document and fail.
	if err := waitPropagation(ctx, conf.PropagationWait); err != nil {
		return Role{}, err
	}

	return role, nil
}

// decodeTrustPolicy unwraps the URL-encoded JSON IAM returns for
// AssumeRolePolicyDocument.
func decodeTrustPolicy(raw *string) (*trustpolicy.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("role has no trust policy, %w", ErrMalformedPolicy)
	}
	policyJson, err := url.QueryUnescape(*raw)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, ErrMalformedPolicy)
	}
	doc, err := trustpolicy.Parse([]byte(policyJson))
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, ErrMalformedPolicy)
	}
	return doc, nil
}

func waitPropagation(ctx context.Context, wait time.Duration) error {
	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "AccessDenied" || code == "AccessDeniedException"
	}
	return false
}
