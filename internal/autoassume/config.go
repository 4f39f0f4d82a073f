package autoassume

import "time"

const (
	SELF_NAME        = "iam-auto-assume"
	INI_CONF_SECTION = "role"

	// DEFAULT_PROPAGATION_WAIT absorbs IAM eventual consistency after a trust
	// policy write. Assuming too early can cache a failed authorization.
	DEFAULT_PROPAGATION_WAIT = 10 * time.Second
	// DEFAULT_RETRY_MAX_ATTEMPTS bounds re-tries of the assume call when the
	// updated trust relationship is not yet visible.
	DEFAULT_RETRY_MAX_ATTEMPTS = 5
	// DEFAULT_RETRY_INTERVAL seeds the exponential backoff between attempts.
	DEFAULT_RETRY_INTERVAL = 1 * time.Second
)

type BaseConfig struct {
	Role           string
	Username       string
	CfgSectionName string
	StoreInProfile bool
}

// CredentialConfig carries the tunables for a single auto-assume invocation.
// PropagationWait and the retry settings exist as independent knobs so tests
// can shrink them.
type CredentialConfig struct {
	BaseConfig           BaseConfig
	SessionName          string
	PropagationWait      time.Duration
	RetryMaxAttempts     uint64
	RetryInitialInterval time.Duration
}

// WithDefaults fills any unset tunables with the documented defaults.
func (c CredentialConfig) WithDefaults() CredentialConfig {
	if c.SessionName == "" {
		c.SessionName = SessionName(c.BaseConfig.Username, SELF_NAME)
	}
	if c.PropagationWait == 0 {
		c.PropagationWait = DEFAULT_PROPAGATION_WAIT
	}
	if c.RetryMaxAttempts == 0 {
		c.RetryMaxAttempts = DEFAULT_RETRY_MAX_ATTEMPTS
	}
	if c.RetryInitialInterval == 0 {
		c.RetryInitialInterval = DEFAULT_RETRY_INTERVAL
	}
	return c
}
