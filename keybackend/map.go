// Package keybackend provides CredentialStore implementations for looking up
// the Atmos secret of a uid.
package keybackend

import (
	"fmt"

	"github.com/sagarc03/atmos"
)

// CredentialStore resolves a uid to its credential.
type CredentialStore interface {
	Lookup(uid string) (atmos.Credential, error)
}

// MapCredentialStore retrieves credentials from an in-memory map.
// Suitable for configuration file-based key storage.
type MapCredentialStore struct {
	creds map[string]atmos.Credential
}

// NewMapCredentialStore creates a map-based store keyed by uid.
func NewMapCredentialStore(creds map[string]atmos.Credential) *MapCredentialStore {
	return &MapCredentialStore{creds: creds}
}

// Lookup retrieves the credential for uid.
func (s *MapCredentialStore) Lookup(uid string) (atmos.Credential, error) {
	cred, found := s.creds[uid]
	if !found {
		return atmos.Credential{}, fmt.Errorf("lookup %q: %w", uid, ErrKeyNotFound)
	}
	return cred, nil
}

// Credentials returns every stored credential.
func (s *MapCredentialStore) Credentials() []atmos.Credential {
	out := make([]atmos.Credential, 0, len(s.creds))
	for _, c := range s.creds {
		out = append(out, c)
	}
	return out
}
