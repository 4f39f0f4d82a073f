package cmd

import (
	"fmt"
	"os"

	"github.com/bneutra/iam-auto-assume/internal/autoassume"
	"github.com/bneutra/iam-auto-assume/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgSectionName string
	cfgFile        string
	storeInProfile bool
	verbose        bool
	rootCmd        = &cobra.Command{
		Use:   "iam-auto-assume",
		Short: "CLI tool for assuming an IAM role by self-granting trust",
		Long: `CLI tool for iteratively testing IAM access policies.
Updates the trust policy of a target role to allow the current caller identity to assume it,
assumes the role and returns the temporary credentials as a credential_process payload,
or stores them under a named profile section in the shared AWS credentials file.

The trust policy change is never reverted - do not point this at production roles.`,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		util.Exit(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgSectionName, "cfg-section", "", "", "config section name in the shared AWS credentials file")
	rootCmd.PersistentFlags().BoolVarP(&storeInProfile, "store-profile", "s", false, "By default the credentials are returned to stdout to be used by the credential_process. Set this flag to instead store the credentials under a named profile section")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(fmt.Sprintf(".%s", autoassume.SELF_NAME))
	}

	viper.AutomaticEnv()

	util.IsTraceEnabled = verbose

	if err := viper.ReadInConfig(); err == nil {
		util.Traceln("Using config file: %s", viper.ConfigFileUsed())
	}
}
