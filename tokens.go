package atmos

import "sync"

// TokenCache maps credentials to the subtenant ids issued for them. Entries
// are written once and live for the lifetime of the process. It is safe for
// concurrent use.
type TokenCache struct {
	tokens sync.Map
}

// NewTokenCache returns an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{}
}

// Get returns the token stored for cred. A missing entry means the credential
// has not been bootstrapped yet.
func (c *TokenCache) Get(cred Credential) (string, bool) {
	v, ok := c.tokens.Load(cred)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Store records token for cred unless a token is already present, and returns
// the token that ended up in the cache. Empty tokens are not stored.
func (c *TokenCache) Store(cred Credential, token string) string {
	if token == "" {
		existing, _ := c.Get(cred)
		return existing
	}
	actual, _ := c.tokens.LoadOrStore(cred, token)
	return actual.(string)
}
