package autoassume

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path"

	ini "gopkg.in/ini.v1"
)

var ErrConfigFailure = errors.New("config error")

func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal("unable to get the user home dir")
	}
	return home
}

// SessionName derives the role session name recorded in CloudTrail for the
// assumed session.
func SessionName(username, selfName string) string {
	if username == "" {
		username = "unknown"
	}
	return fmt.Sprintf("%s-%s", username, selfName)
}

// SetCredentials emits creds either as a credential_process payload on
// stdout or into a named section of the shared AWS credentials file.
func SetCredentials(creds *AWSCredentials, config CredentialConfig) error {
	if config.BaseConfig.StoreInProfile {
		return storeCredentialsInProfile(*creds, config.BaseConfig.CfgSectionName)
	}
	return returnStdOutAsJson(*creds)
}

func storeCredentialsInProfile(creds AWSCredentials, configSection string) error {
	var awsConfPath string

	if overriddenpath, exists := os.LookupEnv("AWS_SHARED_CREDENTIALS_FILE"); exists {
		awsConfPath = overriddenpath
	} else {
		awsCredsPath := path.Join(HomeDir(), ".aws", "credentials")
		if _, err := os.Stat(awsCredsPath); os.IsNotExist(err) {
			if err := os.MkdirAll(path.Dir(awsCredsPath), 0755); err != nil {
				return fmt.Errorf("%s, %w", err, ErrConfigFailure)
			}
			if err := os.WriteFile(awsCredsPath, []byte{}, 0600); err != nil {
				return fmt.Errorf("%s, %w", err, ErrConfigFailure)
			}
		}
		awsConfPath = awsCredsPath
	}

	cfg, err := ini.Load(awsConfPath)
	if err != nil {
		return fmt.Errorf("fail to read credentials file: %s, %w", err, ErrConfigFailure)
	}
	cfg.Section(configSection).Key("aws_access_key_id").SetValue(creds.AWSAccessKey)
	cfg.Section(configSection).Key("aws_secret_access_key").SetValue(creds.AWSSecretKey)
	cfg.Section(configSection).Key("aws_session_token").SetValue(creds.AWSSessionToken)
	return cfg.SaveTo(awsConfPath)
}

func returnStdOutAsJson(creds AWSCredentials) error {
	creds.Version = 1

	jsonBytes, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, string(jsonBytes))
	return nil
}
