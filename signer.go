package atmos

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is fixed by the Atmos protocol
	"encoding/base64"
	"fmt"
	"hash"
	"log/slog"
	"net/http"
	"sync"
)

// Signer attaches x-emc-uid and x-emc-signature headers to requests.
//
// The keyed hashes used for signing are not safe for concurrent use, so they
// live in a Worker owned by a single goroutine. Signer itself only holds
// state that is fixed at construction or safe for concurrent reads.
type Signer struct {
	shared     http.Header
	credential Credential
	tokens     *TokenCache
	logger     *slog.Logger
	metrics    *Metrics

	workers sync.Pool
}

// SignerConfig configures a Signer.
type SignerConfig struct {
	// SharedHeaders are applied to every request. The Signer keeps a copy.
	SharedHeaders http.Header
	// Credential is used when a request carries no credential of its own.
	Credential Credential
	Tokens     *TokenCache
	Logger     *slog.Logger
	Metrics    *Metrics
}

// NewSigner creates a Signer. A nil Tokens gets a fresh cache and a nil
// Logger falls back to slog.Default().
func NewSigner(cfg SignerConfig) *Signer {
	s := &Signer{
		shared:     cfg.SharedHeaders.Clone(),
		credential: cfg.Credential,
		tokens:     cfg.Tokens,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
	if s.shared == nil {
		s.shared = http.Header{}
	}
	if s.tokens == nil {
		s.tokens = NewTokenCache()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.workers.New = func() any { return s.NewWorker() }
	return s
}

// SharedHeaders returns a copy of the headers applied to every request.
func (s *Signer) SharedHeaders() http.Header {
	return s.shared.Clone()
}

// Credential returns the default credential.
func (s *Signer) Credential() Credential {
	return s.credential
}

// Tokens returns the session token cache.
func (s *Signer) Tokens() *TokenCache {
	return s.tokens
}

// Sign signs headers with a pooled Worker. It is safe for concurrent use.
func (s *Signer) Sign(headers http.Header, method, path string, cred *Credential) {
	w := s.workers.Get().(*Worker)
	defer s.workers.Put(w)
	w.Sign(headers, method, path, cred)
}

// Canonical returns the canonical string for a request using the signer's
// shared headers.
func (s *Signer) Canonical(headers http.Header, method, path string) string {
	return CanonicalString(headers, s.shared, method, path)
}

// NewWorker returns a Worker bound to s. Each goroutine that signs in a loop
// should own one.
func (s *Signer) NewWorker() *Worker {
	return &Worker{
		signer: s,
		macs:   make(map[string]hash.Hash),
	}
}

// Worker signs requests for a single goroutine. It caches one keyed hash per
// secret and reuses a scratch buffer for the canonical string. A Worker must
// not be used concurrently.
type Worker struct {
	signer *Signer
	macs   map[string]hash.Hash
	buf    bytes.Buffer
	sum    []byte
}

// Sign sets x-emc-uid and, when the credential has a secret, x-emc-signature
// on headers. cred overrides the default credential when not nil.
//
// A secret that cannot be decoded is logged and counted, and the request is
// left without a signature. Sign never fails.
func (w *Worker) Sign(headers http.Header, method, path string, cred *Credential) {
	c := w.signer.credential
	if cred != nil {
		c = *cred
	}
	token, _ := w.signer.tokens.Get(c)
	w.sign(headers, method, path, c, token)
}

// signWithoutToken signs as if no subtenant had been issued for cred yet.
func (w *Worker) signWithoutToken(headers http.Header, method, path string, cred Credential) {
	w.sign(headers, method, path, cred, "")
}

func (w *Worker) sign(headers http.Header, method, path string, cred Credential, token string) {
	if cred.UID != "" {
		if token != "" && path != SubtenantURIBase {
			headers.Set(HeaderUID, token+"/"+cred.UID)
		} else {
			headers.Set(HeaderUID, cred.UID)
		}
	}

	if cred.Secret == "" {
		return
	}

	mac, err := w.mac(cred.Secret)
	if err != nil {
		w.signer.logger.Error("sign request without signature", "uid", cred.UID, "method", method, "path", path, "err", err)
		w.signer.metrics.signingFailed()
		return
	}

	w.buf.Reset()
	writeCanonical(&w.buf, headers, w.signer.shared, method, path)
	if w.signer.logger.Enabled(context.Background(), slog.LevelDebug) {
		w.signer.logger.Debug("canonical representation", "canonical", w.buf.String())
	}

	mac.Reset()
	mac.Write(w.buf.Bytes())
	w.sum = mac.Sum(w.sum[:0])
	headers.Set(HeaderSignature, base64.StdEncoding.EncodeToString(w.sum))
}

// mac returns the cached keyed hash for secret, creating it on first use.
// Failed decodes are not cached.
func (w *Worker) mac(secret string) (hash.Hash, error) {
	if m, ok := w.macs[secret]; ok {
		return m, nil
	}
	key, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}
	m := hmac.New(sha1.New, key)
	w.macs[secret] = m
	return m, nil
}

func decodeSecret(secret string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w: %w", ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("decode secret key: empty key: %w", ErrInvalidSecret)
	}
	return key, nil
}

// Signature computes the x-emc-signature value of a canonical string.
func Signature(secret, canonical string) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// CheckSecret reports whether secret decodes to a usable HMAC key.
func CheckSecret(secret string) error {
	_, err := decodeSecret(secret)
	return err
}
