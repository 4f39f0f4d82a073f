package cmdutils

import (
	"context"
	"errors"
	"fmt"

	"github.com/bneutra/iam-auto-assume/internal/autoassume"
	"github.com/bneutra/iam-auto-assume/internal/util"
)

var ErrMissingArg = errors.New("missing arg")

// GetCredsAutoAssume runs the auto-assume flow against the injected service
// clients and emits the resulting credentials per conf.
func GetCredsAutoAssume(ctx context.Context, svc autoassume.AwsService, conf autoassume.CredentialConfig) error {
	if conf.BaseConfig.CfgSectionName == "" && conf.BaseConfig.StoreInProfile {
		return fmt.Errorf("cfg-section name must be provided if store-profile is enabled, %w", ErrMissingArg)
	}

	creds, err := autoassume.AutoAssume(ctx, svc, conf.BaseConfig.Role, conf)
	if err != nil {
		return err
	}

	util.Traceln("assumed %s until %s", creds.PrincipalARN, creds.Expires)

	return autoassume.SetCredentials(creds, conf)
}
