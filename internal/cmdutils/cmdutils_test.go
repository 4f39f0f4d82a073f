package cmdutils_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
	ini "gopkg.in/ini.v1"

	"github.com/bneutra/iam-auto-assume/internal/autoassume"
	"github.com/bneutra/iam-auto-assume/internal/cmdutils"
)

const (
	callerArn = "arn:aws:iam::111122223333:role/tester"
	roleArn   = "arn:aws:iam::111122223333:role/target-role"
	roleName  = "target-role"
)

// happyAws serves the whole flow from one in-memory role.
type happyAws struct {
	policyJson string
}

func (h *happyAws) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return &sts.GetCallerIdentityOutput{Account: aws.String("111122223333"), Arn: aws.String(callerArn)}, nil
}

func (h *happyAws) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	return &iam.GetRoleOutput{Role: &iamtypes.Role{
		Arn:                      aws.String(roleArn),
		RoleName:                 aws.String(roleName),
		AssumeRolePolicyDocument: aws.String(url.QueryEscape(h.policyJson)),
	}}, nil
}

func (h *happyAws) UpdateAssumeRolePolicy(ctx context.Context, params *iam.UpdateAssumeRolePolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAssumeRolePolicyOutput, error) {
	h.policyJson = *params.PolicyDocument
	return &iam.UpdateAssumeRolePolicyOutput{}, nil
}

func (h *happyAws) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	return &sts.AssumeRoleOutput{
		AssumedRoleUser: &types.AssumedRoleUser{Arn: aws.String("arn:aws:sts::111122223333:assumed-role/target-role/tester")},
		Credentials: &types.Credentials{
			AccessKeyId:     aws.String("123"),
			SecretAccessKey: aws.String("456"),
			SessionToken:    aws.String("abcd"),
			Expiration:      aws.Time(time.Now().Local().Add(15 * time.Minute)),
		},
	}, nil
}

func happyService() autoassume.AwsService {
	h := &happyAws{policyJson: `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":"ec2.amazonaws.com"},"Action":"sts:AssumeRole"}]}`}
	return autoassume.AwsService{Identity: h, Trust: h, Assumer: h}
}

func fastConf() autoassume.CredentialConfig {
	return autoassume.CredentialConfig{
		PropagationWait:      time.Millisecond,
		RetryInitialInterval: time.Millisecond,
		RetryMaxAttempts:     2,
		BaseConfig: autoassume.BaseConfig{
			Role:     roleName,
			Username: "tester",
		},
	}
}

func Test_GetCredsAutoAssume_with(t *testing.T) {
	ttests := map[string]struct {
		setup     func() func()
		conf      func() autoassume.CredentialConfig
		expectErr bool
		errTyp    error
		check     func(t *testing.T)
	}{
		"store-profile without cfg-section": {
			setup: func() func() { return func() {} },
			conf: func() autoassume.CredentialConfig {
				c := fastConf()
				c.BaseConfig.StoreInProfile = true
				return c
			},
			expectErr: true,
			errTyp:    cmdutils.ErrMissingArg,
		},
		"full flow storing into profile": {
			setup: func() func() {
				tempDir, _ := os.MkdirTemp(os.TempDir(), "cmdutils-tester")
				credsFile := path.Join(tempDir, "creds")
				os.WriteFile(credsFile, []byte(``), 0600)
				os.Setenv("AWS_SHARED_CREDENTIALS_FILE", credsFile)
				return func() {
					os.Unsetenv("AWS_SHARED_CREDENTIALS_FILE")
					os.RemoveAll(tempDir)
				}
			},
			conf: func() autoassume.CredentialConfig {
				c := fastConf()
				c.BaseConfig.StoreInProfile = true
				c.BaseConfig.CfgSectionName = "test-section"
				return c
			},
			check: func(t *testing.T) {
				cfg, err := ini.Load(os.Getenv("AWS_SHARED_CREDENTIALS_FILE"))
				if err != nil {
					t.Fatalf("fail to read creds file: %v", err)
				}
				if got := cfg.Section("test-section").Key("aws_session_token").String(); got != "abcd" {
					t.Errorf("expected: abcd, got: %s", got)
				}
			},
		},
		"full flow to stdout": {
			setup: func() func() { return func() {} },
			conf:  fastConf,
		},
	}
	for name, tt := range ttests {
		t.Run(name, func(t *testing.T) {
			cleanUp := tt.setup()
			defer cleanUp()

			err := cmdutils.GetCredsAutoAssume(context.TODO(), happyService(), tt.conf())

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
			if tt.check != nil {
				tt.check(t)
			}
		})
	}
}
