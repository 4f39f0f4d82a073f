package autoassume_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/aws/smithy-go"

	"github.com/bneutra/iam-auto-assume/internal/autoassume"
)

type mockAssumeRole struct {
	assume func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
	calls  int
}

func (m *mockAssumeRole) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.calls++
	return m.assume(ctx, params, optFns...)
}

var mockSuccessAwsCreds = &types.Credentials{
	AccessKeyId:     aws.String("123"),
	SecretAccessKey: aws.String("456"),
	SessionToken:    aws.String("abcd"),
	Expiration:      aws.Time(time.Now().Local().Add(time.Duration(15) * time.Minute)),
}

func assumedOutput() *sts.AssumeRoleOutput {
	return &sts.AssumeRoleOutput{
		AssumedRoleUser: &types.AssumedRoleUser{Arn: aws.String("arn:aws:sts::111122223333:assumed-role/target-role/tester-iam-auto-assume")},
		Credentials:     mockSuccessAwsCreds,
	}
}

func Test_Assume_with(t *testing.T) {
	ttests := map[string]struct {
		srv       func(t *testing.T) *mockAssumeRole
		expectErr bool
		errTyp    error
	}{
		"satisfied trust relationship": {
			srv: func(t *testing.T) *mockAssumeRole {
				m := &mockAssumeRole{}
				m.assume = func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
					if *params.RoleArn != testRoleArn {
						t.Errorf("expected role arn: %s got: %s", testRoleArn, *params.RoleArn)
					}
					if *params.RoleSessionName != "tester-iam-auto-assume" {
						t.Errorf("expected session name: %s got: %s", "tester-iam-auto-assume", *params.RoleSessionName)
					}
					return assumedOutput(), nil
				}
				return m
			},
		},
		"access denied is the retryable rejection": {
			srv: func(t *testing.T) *mockAssumeRole {
				m := &mockAssumeRole{}
				m.assume = func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
					return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "not authorized to perform sts:AssumeRole"}
				}
				return m
			},
			expectErr: true,
			errTyp:    autoassume.ErrAssumeRejected,
		},
		"any other rejection is fatal": {
			srv: func(t *testing.T) *mockAssumeRole {
				m := &mockAssumeRole{}
				m.assume = func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
					return nil, &smithy.GenericAPIError{Code: "ValidationError", Message: "requested DurationSeconds exceeds the MaxSessionDuration"}
				}
				return m
			},
			expectErr: true,
			errTyp:    autoassume.ErrAssumeDenied,
		},
	}
	for name, tt := range ttests {
		t.Run(name, func(t *testing.T) {
			got, err := autoassume.Assume(context.TODO(), tt.srv(t), testRoleArn, "tester-iam-auto-assume")

			if tt.expectErr {
				if err == nil {
					t.Fatalf("got <nil>, wanted %s", tt.errTyp)
				}
				if !errors.Is(err, tt.errTyp) {
					t.Errorf("got %s, wanted %s", err, tt.errTyp)
				}
				return
			}

			if err != nil {
				t.Fatalf("got %s, wanted <nil>", err)
			}
			if got.AWSAccessKey != *mockSuccessAwsCreds.AccessKeyId {
				t.Errorf("expected %v, got %v", mockSuccessAwsCreds, got)
			}
			if got.Expires.Before(time.Now()) {
				t.Errorf("credentials already expired: %s", got.Expires)
			}
		})
	}
}
