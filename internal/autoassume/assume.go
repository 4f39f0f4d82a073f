package autoassume

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type assumeRoleApi interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// Assume exchanges the trust relationship for short lived credentials.
// An AccessDenied response maps to the retryable ErrAssumeRejected since it
// is indistinguishable from trust policy propagation lag, anything else the
// service rejects maps to the fatal ErrAssumeDenied.
func Assume(ctx context.Context, svc assumeRoleApi, roleArn, sessionName string) (*AWSCredentials, error) {
	resp, err := svc.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		if isAccessDenied(err) {
			return nil, fmt.Errorf("sts assume-role %s: %s, %w", roleArn, err, ErrAssumeRejected)
		}
		return nil, fmt.Errorf("sts assume-role %s: %s, %w", roleArn, err, ErrAssumeDenied)
	}

	return &AWSCredentials{
		AWSAccessKey:    aws.ToString(resp.Credentials.AccessKeyId),
		AWSSecretKey:    aws.ToString(resp.Credentials.SecretAccessKey),
		AWSSessionToken: aws.ToString(resp.Credentials.SessionToken),
		PrincipalARN:    aws.ToString(resp.AssumedRoleUser.Arn),
		Expires:         resp.Credentials.Expiration.Local(),
	}, nil
}
