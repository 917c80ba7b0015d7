package clientcli

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5708"

// Profile is a saved server connection.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// Validate checks the profile name and endpoint. The token may be empty and supplied later
// through QUIRE_TOKEN or --token.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("profile name is required")
	}
	return ValidateEndpoint(p.Endpoint)
}

// ValidateEndpoint accepts absolute http and https URLs.
func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("endpoint URL is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// ConfigFile is the on-disk list of profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) index(name string) int {
	return slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Name == name })
}

// GetProfile returns the named profile, or the default profile when name is empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if name == "" {
		return c.GetDefaultProfile()
	}

	i := c.index(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &c.Profiles[i], nil
}

// GetDefaultProfile returns the profile marked default, falling back to the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if i := slices.IndexFunc(c.Profiles, func(p Profile) bool { return p.Default }); i >= 0 {
		return &c.Profiles[i], nil
	}
	return &c.Profiles[0], nil
}

// AddProfile appends a new profile. A second profile with the same name is ErrProfileExists.
func (c *ConfigFile) AddProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile with the same name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	i := c.index(p.Name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks name as the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	if c.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	for i := range c.Profiles {
		c.Profiles[i].Default = c.Profiles[i].Name == name
	}
	return nil
}

// ProfileNames returns the profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the file with owner-only permissions, replacing it atomically.
func (c *ConfigFile) Save(path string) error {
	cleanPath := filepath.Clean(path)
	dir := filepath.Dir(cleanPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), cleanPath); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads a profiles file. A missing file is reported with an error
// matching os.ErrNotExist.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// DefaultConfigPath returns ~/.quire/config.yaml, or "" when there is no home directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".quire", "config.yaml")
}
