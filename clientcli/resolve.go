package clientcli

import (
	"errors"
	"fmt"
	"os"
)

// Config is the resolved connection a Client uses.
type Config struct {
	Endpoint string
	Token    string
}

// WithDefaults returns a copy with DefaultEndpoint filled in.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// ValidateWithAuth checks that a bearer token is set.
func (c *Config) ValidateWithAuth() error {
	if c.Token == "" {
		return ErrTokenRequired
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{Endpoint: p.Endpoint, Token: p.Token}
}

// ConfigFromEnv reads QUIRE_ENDPOINT and QUIRE_TOKEN.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("QUIRE_ENDPOINT"),
		Token:    os.Getenv("QUIRE_TOKEN"),
	}
}

// ProfileFromEnv returns QUIRE_PROFILE.
func ProfileFromEnv() string {
	return os.Getenv("QUIRE_PROFILE")
}

// ConfigPathFromEnv returns QUIRE_CLI_CONFIG.
func ConfigPathFromEnv() string {
	return os.Getenv("QUIRE_CLI_CONFIG")
}

// MergeConfig layers configs left to right. Empty fields never override.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.Token != "" {
			result.Token = cfg.Token
		}
	}
	return result
}

// ResolveOptions are the explicit inputs to Resolve, usually command line flags.
type ResolveOptions struct {
	ConfigPath string // "" = QUIRE_CLI_CONFIG, then DefaultConfigPath
	Profile    string // "" = QUIRE_PROFILE, then the default profile
	Endpoint   string
	Token      string
}

// Resolve layers the selected profile, the environment and opts, in that order.
//
// A missing or empty profiles file is fine unless a config path or profile was asked for
// explicitly, in which case it is an error.
func Resolve(opts ResolveOptions) (*Config, error) {
	path := opts.ConfigPath
	explicitPath := path != ""
	if path == "" {
		path = ConfigPathFromEnv()
		explicitPath = path != ""
	}
	if path == "" {
		path = DefaultConfigPath()
	}

	name := opts.Profile
	if name == "" {
		name = ProfileFromEnv()
	}

	var fromProfile *Config
	if path != "" {
		file, err := LoadConfigFile(path)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(name)
			switch {
			case profileErr == nil:
				fromProfile = ConfigFromProfile(p)
			case name != "" || !errors.Is(profileErr, ErrNoProfiles):
				return nil, profileErr
			}
		case explicitPath || name != "":
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	return MergeConfig(
		fromProfile,
		ConfigFromEnv(),
		&Config{Endpoint: opts.Endpoint, Token: opts.Token},
	), nil
}
