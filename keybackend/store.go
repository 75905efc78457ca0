package keybackend

import (
	"maps"

	"github.com/sagarc03/atmos"
)

// KeysConfig holds configuration for loading credentials.
type KeysConfig struct {
	Inline []atmos.Credential `mapstructure:"inline"` // Inline credentials from config
	File   string             `mapstructure:"file"`   // Path to JSON file containing credentials
}

// NewCredentialStore creates a store from the given configuration.
// It loads credentials from both inline config and file (if specified),
// merging them into a single store. File entries take precedence over inline
// entries with the same uid.
func NewCredentialStore(cfg KeysConfig) (*MapCredentialStore, error) {
	creds, err := index(cfg.Inline)
	if err != nil {
		return nil, err
	}

	if cfg.File != "" {
		fileCreds, err := LoadCredentialsFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		maps.Copy(creds, fileCreds)
	}

	return NewMapCredentialStore(creds), nil
}
