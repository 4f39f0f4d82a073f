package autoassume

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// AwsService bundles the injected service clients for one invocation.
// Identity and Assumer are both satisfied by an STS client, Trust by an IAM
// client; tests substitute fakes per operation.
type AwsService struct {
	Identity callerIdentityApi
	Trust    roleTrustApi
	Assumer  assumeRoleApi
}

// AutoAssume resolves the caller identity, self-grants assume access on the
// target role's trust policy and exchanges it for temporary credentials.
//
// Only the final assume step is retried, with exponential backoff bounded by
// the configured attempt budget, to absorb residual propagation lag the
// fixed wait in EnsureTrust did not cover. Identity and trust policy
// failures abort immediately - any trust policy write already committed
// stays in place.
func AutoAssume(ctx context.Context, svc AwsService, roleName string, conf CredentialConfig) (*AWSCredentials, error) {
	conf = conf.WithDefaults()

	caller, err := ResolveCallerIdentity(ctx, svc.Identity)
	if err != nil {
		return nil, err
	}

	role, err := EnsureTrust(ctx, svc.Trust, roleName, caller.ARN, conf)
	if err != nil {
		return nil, err
	}

	var creds *AWSCredentials
	operation := func() error {
		c, err := Assume(ctx, svc.Assumer, role.ARN, conf.SessionName)
		if err != nil {
			if errors.Is(err, ErrAssumeDenied) {
				return backoff.Permanent(err)
			}
			return err
		}
		creds = c
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = conf.RetryInitialInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, conf.RetryMaxAttempts), ctx)); err != nil {
		return nil, err
	}

	return creds, nil
}
