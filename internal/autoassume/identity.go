package autoassume

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type callerIdentityApi interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ResolveCallerIdentity determines the principal of the ambient credential
// context via STS. No side effects.
func ResolveCallerIdentity(ctx context.Context, svc callerIdentityApi) (CallerIdentity, error) {
	resp, err := svc.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, fmt.Errorf("sts get-caller-identity: %s, %w", err, ErrIdentityResolution)
	}
	return CallerIdentity{
		ARN:       aws.ToString(resp.Arn),
		AccountID: aws.ToString(resp.Account),
	}, nil
}

// RoleARN builds the ARN of a role in the caller's own account from its
// plain name.
func (c CallerIdentity) RoleARN(roleName string) string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", c.AccountID, roleName)
}
