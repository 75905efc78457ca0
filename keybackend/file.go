package keybackend

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sagarc03/atmos"
)

// LoadCredentialsFromFile loads credentials from a JSON file.
// The file should contain an array of uid/secret pairs:
//
//	[
//	  {"uid": "user1", "secret": "u5QtPuQx+W5nrrQQEg7nArBqSgC8qLiDt2RhQthb"},
//	  {"uid": "user2", "secret": "c2VjcmV0Mg=="}
//	]
//
// Entries with an empty uid or secret are skipped. A secret that is not
// valid base64 fails the whole load.
func LoadCredentialsFromFile(path string) (map[string]atmos.Credential, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var creds []atmos.Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	return index(creds)
}

func index(creds []atmos.Credential) (map[string]atmos.Credential, error) {
	keys := make(map[string]atmos.Credential, len(creds))
	for _, c := range creds {
		if c.UID == "" || c.Secret == "" {
			continue
		}
		if err := atmos.CheckSecret(c.Secret); err != nil {
			return nil, fmt.Errorf("uid %s: %w", c.UID, err)
		}
		keys[c.UID] = c
	}
	return keys, nil
}
