package provider

import (
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/erc1193/providerkit/pkg/log"
)

// Config carries the dispatch policy knobs. All fields have env tags so a
// host application can populate the struct straight from the environment.
type Config struct {
	// ForwardWhenDisconnected forwards requests to the transport even while
	// the tracker reports Disconnected, instead of rejecting them with code
	// 4900. Rejection is the recommended behavior and the default.
	ForwardWhenDisconnected bool `env:"PROVIDER_FORWARD_WHEN_DISCONNECTED" env-default:"false"`

	// EnforceChainAffinity rejects requests that declare a target chain
	// different from the connected one with code 4901 before forwarding.
	EnforceChainAffinity bool `env:"PROVIDER_ENFORCE_CHAIN_AFFINITY" env-default:"true"`

	// Log configures the zap logger a host builds for the provider.
	Log log.Config
}

// LoadConfig reads the configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfig returns the recommended dispatch policy.
func DefaultConfig() Config {
	return Config{
		ForwardWhenDisconnected: false,
		EnforceChainAffinity:    true,
	}
}
