package atmos_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // protocol algorithm
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sagarc03/atmos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUID    = "user1"
	testSecret = "u5QtPuQx+W5nrrQQEg7nArBqSgC8qLiDt2RhQthb"
	testToken  = "5cc597535ed747f09b5d273154216339"
)

var testCredential = atmos.Credential{UID: testUID, Secret: testSecret}

func newTestSigner(t *testing.T, shared http.Header) (*atmos.Signer, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return atmos.NewSigner(atmos.SignerConfig{
		SharedHeaders: shared,
		Credential:    testCredential,
		Logger:        logger,
	}), &logs
}

func expectedSignature(t *testing.T, secret, canonical string) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(secret)
	require.NoError(t, err)
	mac := hmac.New(sha1.New, key)
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSigner_IdentityWithoutToken(t *testing.T) {
	signer, _ := newTestSigner(t, nil)

	headers := http.Header{}
	headers.Set("Date", testDate)
	signer.Sign(headers, http.MethodGet, "/rest/objects/abc", nil)

	assert.Equal(t, testUID, headers.Get(atmos.HeaderUID))
	assert.NotEmpty(t, headers.Get(atmos.HeaderSignature))
}

func TestSigner_IdentityWithToken(t *testing.T) {
	signer, _ := newTestSigner(t, nil)
	signer.Tokens().Store(testCredential, "TOK")

	t.Run("data path gets token prefix", func(t *testing.T) {
		headers := http.Header{}
		signer.Sign(headers, http.MethodGet, "/rest/objects/abc", nil)
		assert.Equal(t, "TOK/user1", headers.Get(atmos.HeaderUID))
	})

	t.Run("subtenant creation path suppresses token", func(t *testing.T) {
		headers := http.Header{}
		signer.Sign(headers, http.MethodPut, atmos.SubtenantURIBase, nil)
		assert.Equal(t, "user1", headers.Get(atmos.HeaderUID))
	})

	t.Run("subtenant item path keeps token", func(t *testing.T) {
		headers := http.Header{}
		signer.Sign(headers, http.MethodGet, atmos.SubtenantURIBase+"/TOK", nil)
		assert.Equal(t, "TOK/user1", headers.Get(atmos.HeaderUID))
	})
}

func TestSigner_SignatureMatchesCanonical(t *testing.T) {
	shared := http.Header{}
	shared.Set(atmos.HeaderNamespace, "ns1")
	signer, _ := newTestSigner(t, shared)

	headers := http.Header{}
	headers.Set("Date", testDate)
	headers.Set(atmos.HeaderFilesystemAccessEnabled, "true")
	signer.Sign(headers, http.MethodPut, atmos.SubtenantURIBase, nil)

	canonical := "PUT\n\n\n" + testDate + "\n" + atmos.SubtenantURIBase +
		"\nx-emc-filesystem-access-enabled:true" +
		"\nx-emc-namespace:ns1" +
		"\nx-emc-uid:user1"
	assert.Equal(t, canonical, signer.Canonical(headers, http.MethodPut, atmos.SubtenantURIBase))
	assert.Equal(t, expectedSignature(t, testSecret, canonical), headers.Get(atmos.HeaderSignature))

	require.NoError(t, atmos.Verify(headers, shared, http.MethodPut, atmos.SubtenantURIBase, testSecret))
}

func TestSigner_ResigningIgnoresOldSignature(t *testing.T) {
	signer, _ := newTestSigner(t, nil)

	headers := http.Header{}
	headers.Set("Date", testDate)
	signer.Sign(headers, http.MethodGet, "/p", nil)
	first := headers.Get(atmos.HeaderSignature)

	signer.Sign(headers, http.MethodGet, "/p", nil)
	assert.Equal(t, first, headers.Get(atmos.HeaderSignature))
}

func TestSigner_CredentialOverride(t *testing.T) {
	signer, _ := newTestSigner(t, nil)
	other := atmos.Credential{UID: "user2", Secret: base64.StdEncoding.EncodeToString([]byte("other-secret"))}

	headers := http.Header{}
	headers.Set("Date", testDate)
	signer.Sign(headers, http.MethodDelete, "/rest/objects/abc", &other)

	assert.Equal(t, "user2", headers.Get(atmos.HeaderUID))
	require.NoError(t, atmos.Verify(headers, nil, http.MethodDelete, "/rest/objects/abc", other.Secret))
	assert.ErrorIs(t, atmos.Verify(headers, nil, http.MethodDelete, "/rest/objects/abc", testSecret), atmos.ErrUnauthorized)
}

func TestSigner_EmptyCredential(t *testing.T) {
	signer := atmos.NewSigner(atmos.SignerConfig{})

	headers := http.Header{}
	signer.Sign(headers, http.MethodGet, "/p", nil)

	assert.Empty(t, headers.Get(atmos.HeaderUID))
	assert.Empty(t, headers.Get(atmos.HeaderSignature))
}

func TestSigner_UIDWithoutSecret(t *testing.T) {
	signer := atmos.NewSigner(atmos.SignerConfig{Credential: atmos.Credential{UID: "anon"}})

	headers := http.Header{}
	signer.Sign(headers, http.MethodGet, "/p", nil)

	assert.Equal(t, "anon", headers.Get(atmos.HeaderUID))
	assert.Empty(t, headers.Get(atmos.HeaderSignature))
}

func TestSigner_MalformedSecret(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := atmos.NewMetrics(reg)
	signer := atmos.NewSigner(atmos.SignerConfig{
		Credential: atmos.Credential{UID: "user1", Secret: "not base64!"},
		Logger:     slog.New(slog.NewTextHandler(&logs, nil)),
		Metrics:    metrics,
	})

	headers := http.Header{}
	assert.NotPanics(t, func() {
		signer.Sign(headers, http.MethodGet, "/p", nil)
	})

	assert.Equal(t, "user1", headers.Get(atmos.HeaderUID))
	_, signed := headers[http.CanonicalHeaderKey(atmos.HeaderSignature)]
	assert.False(t, signed)
	assert.Equal(t, 1, strings.Count(logs.String(), "sign request without signature"))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SigningFailures), 0)

	signer.Sign(headers, http.MethodGet, "/p", nil)
	assert.Equal(t, 2, strings.Count(logs.String(), "sign request without signature"))
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.SigningFailures), 0)
}

func TestSigner_CanonicalLoggedAtDebugOnly(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  bool
	}{
		{name: "debug", level: slog.LevelDebug, want: true},
		{name: "info", level: slog.LevelInfo, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			signer := atmos.NewSigner(atmos.SignerConfig{
				Credential: testCredential,
				Logger:     slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: tt.level})),
			})

			headers := http.Header{}
			headers.Set("Date", testDate)
			signer.Sign(headers, http.MethodGet, "/rest/objects/abc", nil)

			assert.NotEmpty(t, headers.Get(atmos.HeaderSignature))
			assert.Equal(t, tt.want, strings.Contains(logs.String(), "canonical representation"))
		})
	}
}

func TestSigner_DoesNotMutateSharedHeaders(t *testing.T) {
	shared := http.Header{}
	shared.Set(atmos.HeaderNamespace, "ns1")
	signer, _ := newTestSigner(t, shared)

	signer.Sign(http.Header{}, http.MethodGet, "/p", nil)

	got := signer.SharedHeaders()
	assert.Equal(t, http.Header{"X-Emc-Namespace": {"ns1"}}, got)

	shared.Set(atmos.HeaderNamespace, "changed")
	assert.Equal(t, "ns1", signer.SharedHeaders().Get(atmos.HeaderNamespace))
}

func TestWorker_ConcurrentSigning(t *testing.T) {
	signer, _ := newTestSigner(t, nil)

	headers := http.Header{}
	headers.Set("Date", testDate)
	reference := headers.Clone()
	signer.NewWorker().Sign(reference, http.MethodGet, "/rest/objects/abc", nil)
	want := reference.Get(atmos.HeaderSignature)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := signer.NewWorker()
			for range 50 {
				h := headers.Clone()
				w.Sign(h, http.MethodGet, "/rest/objects/abc", nil)
				assert.Equal(t, want, h.Get(atmos.HeaderSignature))

				p := headers.Clone()
				signer.Sign(p, http.MethodGet, "/rest/objects/abc", nil)
				assert.Equal(t, want, p.Get(atmos.HeaderSignature))
			}
		}()
	}
	wg.Wait()
}

func TestSignature(t *testing.T) {
	got, err := atmos.Signature(testSecret, "GET\n\n\n\n/p")
	require.NoError(t, err)
	assert.Equal(t, expectedSignature(t, testSecret, "GET\n\n\n\n/p"), got)

	_, err = atmos.Signature("%%%", "GET")
	assert.ErrorIs(t, err, atmos.ErrInvalidSecret)

	_, err = atmos.Signature("", "GET")
	assert.ErrorIs(t, err, atmos.ErrInvalidSecret)
}

func TestVerify(t *testing.T) {
	headers := http.Header{}
	headers.Set("Date", testDate)
	headers.Set(atmos.HeaderUID, testUID)

	t.Run("missing signature", func(t *testing.T) {
		err := atmos.Verify(headers, nil, http.MethodGet, "/p", testSecret)
		assert.ErrorIs(t, err, atmos.ErrUnauthorized)
	})

	t.Run("tampered path", func(t *testing.T) {
		signed := headers.Clone()
		sig, err := atmos.Signature(testSecret, atmos.CanonicalString(signed, nil, http.MethodGet, "/p"))
		require.NoError(t, err)
		signed.Set(atmos.HeaderSignature, sig)

		require.NoError(t, atmos.Verify(signed, nil, http.MethodGet, "/p", testSecret))
		assert.ErrorIs(t, atmos.Verify(signed, nil, http.MethodGet, "/q", testSecret), atmos.ErrUnauthorized)
	})
}

func TestSplitUID(t *testing.T) {
	subtenant, uid := atmos.SplitUID("TOK/user1")
	assert.Equal(t, "TOK", subtenant)
	assert.Equal(t, "user1", uid)

	subtenant, uid = atmos.SplitUID("user1")
	assert.Empty(t, subtenant)
	assert.Equal(t, "user1", uid)
}
