package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/bneutra/iam-auto-assume/internal/autoassume"
	"github.com/bneutra/iam-auto-assume/internal/cmdutils"
	"github.com/spf13/cobra"
)

var ErrUnableToLoadAwsConfig = errors.New("unable to load aws config")

var (
	sessionName      string
	propagationWait  time.Duration
	retryMaxAttempts uint64
	timeout          time.Duration
	assumeCmd        = &cobra.Command{
		Use:   "assume <role-name>",
		Short: "Self-grant assume access on a role's trust policy and assume it",
		Long: `Resolves the current caller identity, appends it to the trust policy of the
named role (skipped when already present), waits for the change to propagate and assumes
the role. The role name is resolved in the caller's current account.`,
		Args: cobra.ExactArgs(1),
		RunE: assume,
	}
)

func init() {
	assumeCmd.PersistentFlags().StringVarP(&sessionName, "session-name", "n", "", "Role session name, defaults to <username>-iam-auto-assume")
	assumeCmd.PersistentFlags().DurationVarP(&propagationWait, "propagation-wait", "w", autoassume.DEFAULT_PROPAGATION_WAIT, "Fixed wait after a trust policy write before assuming, absorbs IAM eventual consistency")
	assumeCmd.PersistentFlags().Uint64VarP(&retryMaxAttempts, "retry-max-attempts", "", autoassume.DEFAULT_RETRY_MAX_ATTEMPTS, "Max re-tries of the assume call whilst the trust update propagates")
	assumeCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2*time.Minute, "Bounds the whole invocation including waits and retries")
	rootCmd.AddCommand(assumeCmd)
}

func assume(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	conf := autoassume.CredentialConfig{
		SessionName:      sessionName,
		PropagationWait:  propagationWait,
		RetryMaxAttempts: retryMaxAttempts,
		BaseConfig: autoassume.BaseConfig{
			Role:           args[0],
			Username:       os.Getenv("USER"),
			CfgSectionName: cfgSectionName,
			StoreInProfile: storeInProfile,
		},
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load default aws config %s, %w", err, ErrUnableToLoadAwsConfig)
	}

	stsSvc := sts.NewFromConfig(cfg)
	svc := autoassume.AwsService{
		Identity: stsSvc,
		Trust:    iam.NewFromConfig(cfg),
		Assumer:  stsSvc,
	}

	return cmdutils.GetCredsAutoAssume(ctx, svc, conf)
}
