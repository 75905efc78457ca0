package clientcli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/atmos"
)

// DefaultNode is the storage node used when none is configured.
const DefaultNode = "localhost:9022"

// Profile holds configuration for a single Atmos endpoint.
type Profile struct {
	Name      string   `yaml:"name"`
	Nodes     []string `yaml:"nodes"`
	Scheme    string   `yaml:"scheme,omitempty"`
	Namespace string   `yaml:"namespace,omitempty"`
	FSAccess  bool     `yaml:"fs_access,omitempty"`
	UID       string   `yaml:"uid,omitempty"`
	Secret    string   `yaml:"secret,omitempty"`
	Token     string   `yaml:"token,omitempty"`
	Default   bool     `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists. Use UpdateProfile to modify an existing profile.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile updates an existing profile. Returns ErrProfileNotFound
// if the profile doesn't exist. Use AddProfile to create a new profile.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// SetDefault sets the default profile by name.
// Clears the default flag from all other profiles.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// ProfileNames returns a list of all profile names.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, len(c.Profiles))
	for i := range c.Profiles {
		names[i] = c.Profiles[i].Name
	}
	return names
}

// Save writes the config to the specified path.
// Creates the parent directory if it doesn't exist.
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

	if err := os.WriteFile(cleanPath, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// LoadConfigFile loads the config file from the specified path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigPath returns the default config file path (~/.atmos/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".atmos", "config.yaml")
}

// Config holds resolved client configuration for a single endpoint.
// This is what the Client uses after profile resolution.
type Config struct {
	Nodes     []string
	Scheme    string
	Namespace string
	FSAccess  bool
	UID       string
	Secret    string
	Token     string
}

// WithDefaults returns a copy of the config with default values applied.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if len(cfg.Nodes) == 0 {
		cfg.Nodes = []string{DefaultNode}
	}
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	return &cfg
}

// ValidateWithAuth checks that a usable credential is set.
func (c *Config) ValidateWithAuth() error {
	if c.UID == "" {
		return ErrUIDRequired
	}
	if c.Secret == "" {
		return ErrSecretRequired
	}
	if err := atmos.CheckSecret(c.Secret); err != nil {
		return err
	}
	return nil
}

// Credential returns the configured uid and secret.
func (c *Config) Credential() atmos.Credential {
	return atmos.Credential{UID: c.UID, Secret: c.Secret}
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Nodes:     append([]string(nil), p.Nodes...),
		Scheme:    p.Scheme,
		Namespace: p.Namespace,
		FSAccess:  p.FSAccess,
		UID:       p.UID,
		Secret:    p.Secret,
		Token:     p.Token,
	}
}

// ConfigFromEnv loads config from environment variables. ATMOS_NODES is a
// comma separated list.
func ConfigFromEnv() *Config {
	cfg := &Config{
		Scheme:    os.Getenv("ATMOS_SCHEME"),
		Namespace: os.Getenv("ATMOS_NAMESPACE"),
		UID:       os.Getenv("ATMOS_UID"),
		Secret:    os.Getenv("ATMOS_SECRET"),
		Token:     os.Getenv("ATMOS_TOKEN"),
	}
	cfg.Nodes = splitNodes(os.Getenv("ATMOS_NODES"))
	if fs, err := strconv.ParseBool(os.Getenv("ATMOS_FS_ACCESS")); err == nil {
		cfg.FSAccess = fs
	}
	return cfg
}

// ProfileFromEnv returns the profile name from ATMOS_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("ATMOS_PROFILE")
}

// ConfigPathFromEnv returns the config file path from ATMOS_CONFIG environment variable.
func ConfigPathFromEnv() string {
	return os.Getenv("ATMOS_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty values in later configs do not override values in earlier configs.
// FSAccess only ever turns on.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if len(cfg.Nodes) > 0 {
			result.Nodes = append([]string(nil), cfg.Nodes...)
		}
		if cfg.Scheme != "" {
			result.Scheme = cfg.Scheme
		}
		if cfg.Namespace != "" {
			result.Namespace = cfg.Namespace
		}
		if cfg.FSAccess {
			result.FSAccess = true
		}
		if cfg.UID != "" {
			result.UID = cfg.UID
		}
		if cfg.Secret != "" {
			result.Secret = cfg.Secret
		}
		if cfg.Token != "" {
			result.Token = cfg.Token
		}
	}
	return result
}

func splitNodes(s string) []string {
	var nodes []string
	for n := range strings.SplitSeq(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
