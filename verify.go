package atmos

import (
	"crypto/hmac"
	"fmt"
	"net/http"
	"strings"
)

// Verify checks the x-emc-signature carried in headers against the signature
// computed with secret. shared holds headers the sender applied on top of
// headers, and may be nil when headers already contains everything.
func Verify(headers, shared http.Header, method, path, secret string) error {
	got := headers.Get(HeaderSignature)
	if got == "" {
		return fmt.Errorf("missing %s: %w", HeaderSignature, ErrUnauthorized)
	}

	want, err := Signature(secret, CanonicalString(headers, shared, method, path))
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	if !hmac.Equal([]byte(want), []byte(got)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}
	return nil
}

// SplitUID splits an x-emc-uid value into its subtenant and uid parts. The
// subtenant is empty when the value carries only a uid.
func SplitUID(value string) (subtenant, uid string) {
	subtenant, uid, found := strings.Cut(value, "/")
	if !found {
		return "", value
	}
	return subtenant, uid
}
