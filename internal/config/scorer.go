package config

import (
	"fmt"
	"os"
	"strconv"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvScorerEnabled      = "LODESTAR_SCORER_ENABLED"
	EnvScorerProviderName = "LODESTAR_SCORER_PROVIDER_NAME"
	EnvScorerBaseURL      = "LODESTAR_SCORER_BASE_URL"
	EnvScorerToken        = "LODESTAR_SCORER_TOKEN"
	EnvScorerDeployment   = "LODESTAR_SCORER_DEPLOYMENT"
	EnvScorerAPIVersion   = "LODESTAR_SCORER_API_VERSION"
	EnvScorerAuthType     = "LODESTAR_SCORER_AUTH_TYPE"
	EnvScorerModelName    = "LODESTAR_SCORER_MODEL_NAME"
)

// ScorerConfig holds the optional model-backed mapping fallback. When
// disabled, events with no alias match simply enter the review queue
// unlinked.
type ScorerConfig struct {
	Enabled bool                 `toml:"enabled"`
	Agent   gaconfig.AgentConfig `toml:"agent"`
}

// Finalize applies defaults, environment variable overrides, and validation.
// The agent sub-config is only validated when the scorer is enabled.
func (c *ScorerConfig) Finalize() error {
	if v := os.Getenv(EnvScorerEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}

	if !c.Enabled {
		return nil
	}

	loadAgentDefaults(&c.Agent)
	loadAgentEnv(&c.Agent)
	return validateAgent(&c.Agent)
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *ScorerConfig) Merge(overlay *ScorerConfig) {
	c.Enabled = overlay.Enabled
	c.Agent.Merge(&overlay.Agent)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}
	if v := os.Getenv(EnvScorerProviderName); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvScorerBaseURL); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv(EnvScorerModelName); v != "" {
		c.Model.Name = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			c.Provider.Options[key] = v
		}
	}

	setOption(EnvScorerToken, "token")
	setOption(EnvScorerDeployment, "deployment")
	setOption(EnvScorerAPIVersion, "api_version")
	setOption(EnvScorerAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("agent name required")
	}
	if c.Provider == nil || c.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	if c.Model == nil {
		return fmt.Errorf("model required")
	}
	return nil
}
