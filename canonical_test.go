package atmos_test

import (
	"net/http"
	"testing"

	"github.com/sagarc03/atmos"
	"github.com/stretchr/testify/assert"
)

const testDate = "Thu, 01 Jan 2026 00:00:00 GMT"

func TestCanonicalString_SubtenantRequest(t *testing.T) {
	headers := http.Header{}
	headers.Set("Date", testDate)
	headers.Set(atmos.HeaderFilesystemAccessEnabled, "true")

	shared := http.Header{}
	shared.Set(atmos.HeaderNamespace, "ns1")

	got := atmos.CanonicalString(headers, shared, http.MethodPut, atmos.SubtenantURIBase)

	want := "PUT\n\n\n" + testDate + "\n" + atmos.SubtenantURIBase +
		"\nx-emc-filesystem-access-enabled:true" +
		"\nx-emc-namespace:ns1"
	assert.Equal(t, want, got)
}

func TestCanonicalString_Reproducible(t *testing.T) {
	headers := http.Header{}
	headers.Set("Date", testDate)
	headers.Set("Content-Type", "application/octet-stream")
	headers.Set(atmos.HeaderUID, "tok/user1")
	headers.Set("X-Emc-Meta", "a=1")

	first := atmos.CanonicalString(headers, nil, http.MethodPost, "/rest/objects")
	for range 10 {
		assert.Equal(t, first, atmos.CanonicalString(headers, nil, http.MethodPost, "/rest/objects"))
	}
}

func TestCanonicalString_HeaderOrder(t *testing.T) {
	headers := http.Header{}
	headers.Set("Date", testDate)
	headers.Set("Range", "bytes=0-9")
	headers.Set("Content-Type", "text/plain")
	headers.Set("X-Emc-Zeta", "z")
	headers.Set("X-Emc-Alpha", "a")
	headers.Set("X-Other", "ignored")

	got := atmos.CanonicalString(headers, nil, http.MethodGet, "/rest/objects/abc")

	want := "GET\ntext/plain\nbytes=0-9\n" + testDate + "\n/rest/objects/abc" +
		"\nx-emc-alpha:a" +
		"\nx-emc-zeta:z"
	assert.Equal(t, want, got)
}

func TestCanonicalString_AbsentHeadersEmitEmptyLines(t *testing.T) {
	got := atmos.CanonicalString(http.Header{}, nil, http.MethodHead, "/rest/objects/abc")
	assert.Equal(t, "HEAD\n\n\n\n/rest/objects/abc", got)
}

func TestCanonicalString_SharedFallback(t *testing.T) {
	shared := http.Header{}
	shared.Set("Content-Type", "application/json")
	shared.Set("Date", "shared date")

	headers := http.Header{}
	headers.Set("Date", testDate)

	got := atmos.CanonicalString(headers, shared, http.MethodGet, "/p")
	assert.Equal(t, "GET\napplication/json\n\n"+testDate+"\n/p", got)
}

func TestCanonicalString_RequestHeadersOverrideShared(t *testing.T) {
	shared := http.Header{}
	shared.Set(atmos.HeaderNamespace, "shared-ns")
	shared.Set("X-Emc-Shared-Only", "s")

	headers := http.Header{}
	headers.Set(atmos.HeaderNamespace, "request-ns")

	got := atmos.CanonicalString(headers, shared, http.MethodGet, "/p")
	assert.Equal(t, "GET\n\n\n\n/p\nx-emc-namespace:request-ns\nx-emc-shared-only:s", got)
}

func TestCanonicalString_ExcludesSignature(t *testing.T) {
	headers := http.Header{}
	headers.Set(atmos.HeaderSignature, "c2lnbmF0dXJl")
	headers.Set(atmos.HeaderUID, "user1")

	shared := http.Header{}
	shared.Set(atmos.HeaderSignature, "c2hhcmVk")

	got := atmos.CanonicalString(headers, shared, http.MethodGet, "/p")
	assert.Equal(t, "GET\n\n\n\n/p\nx-emc-uid:user1", got)
	assert.NotContains(t, got, atmos.HeaderSignature)
}

func TestCanonicalString_MultiValueHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Add("Range", "bytes=0-1")
	headers.Add("Range", "bytes=4-5")
	headers.Add("X-Emc-Tags", "first")
	headers.Add("X-Emc-Tags", "last")

	got := atmos.CanonicalString(headers, nil, http.MethodGet, "/p")
	assert.Equal(t, "GET\n\nbytes=0-1\nbytes=4-5\n\n/p\nx-emc-tags:last", got)
}

func TestCanonicalString_NonCanonicalKeys(t *testing.T) {
	headers := http.Header{
		"x-emc-meta": {"raw"},
	}

	got := atmos.CanonicalString(headers, nil, http.MethodGet, "/p")
	assert.Equal(t, "GET\n\n\n\n/p\nx-emc-meta:raw", got)
}
