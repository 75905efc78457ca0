package atmostest_test

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sagarc03/atmos"
	"github.com/sagarc03/atmos/atmostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cred = atmos.Credential{
	UID:    "user1",
	Secret: base64.StdEncoding.EncodeToString([]byte("0123456789abcdef")),
}

func newDriver(t *testing.T, srv *atmostest.Server, c atmos.Credential, fsAccess bool) *atmos.Driver {
	t.Helper()
	drv, err := atmos.New(atmos.Config{
		Nodes:      []string{srv.Addr()},
		Namespace:  "ns1",
		FSAccess:   fsAccess,
		Credential: c,
	}, atmos.WithDoer(srv.Client()))
	require.NoError(t, err)
	return drv
}

func TestServer_SubtenantLifecycle(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	drv := newDriver(t, srv, cred, false)
	ctx := context.Background()

	token, ok, err := drv.AuthToken(ctx, cred)
	require.NoError(t, err)
	require.True(t, ok)

	issued, found := srv.Subtenant(cred.UID)
	require.True(t, found)
	assert.Equal(t, issued, token)
	assert.Len(t, token, 32)

	method, path, err := drv.ResolveTokenRequest(atmos.OpRead, atmos.Item{Name: token})
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(ctx, method, srv.URL+path, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Date", "Thu, 01 Jan 2026 00:00:00 GMT")
	for k, v := range drv.Signer().SharedHeaders() {
		req.Header[k] = v
	}
	drv.Sign(req.Header, method, path, nil)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, token, resp.Header.Get(atmos.HeaderSubtenantID))
}

func TestServer_RejectsBadSignature(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	wrong := atmos.Credential{UID: cred.UID, Secret: base64.StdEncoding.EncodeToString([]byte("wrong"))}
	drv := newDriver(t, srv, wrong, false)

	req, err := drv.BuildRequest(context.Background(), srv.Addr(), atmos.Operation{
		Type: atmos.OpRead,
		Item: atmos.Item{Name: "abc"},
	}, nil, 0)
	require.NoError(t, err)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body atmostest.ErrorResponse
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, atmostest.CodeSignatureMismatch, body.Code)
}

func TestServer_RejectsUnknownUID(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	stranger := atmos.Credential{UID: "stranger", Secret: cred.Secret}
	drv := newDriver(t, srv, stranger, false)

	_, ok, err := drv.AcquireSessionToken(context.Background(), stranger)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestServer_ObjectsByID(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	drv := newDriver(t, srv, cred, false)
	ctx := context.Background()
	_, ok, err := drv.AuthToken(ctx, cred)
	require.NoError(t, err)
	require.True(t, ok)

	content := "hello atmos"
	req, err := drv.BuildRequest(ctx, srv.Addr(), atmos.Operation{
		Type: atmos.OpCreate,
		Item: atmos.Item{Name: "ignored"},
	}, strings.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	assert.Equal(t, atmos.ObjectsURIBase, req.URL.Path)

	resp, err := drv.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id, ok := atmos.ObjectIDFromLocation(resp)
	require.True(t, ok)

	req, err = drv.BuildRequest(ctx, srv.Addr(), atmos.Operation{
		Type: atmos.OpRead,
		Item: atmos.Item{Name: id},
	}, nil, 0)
	require.NoError(t, err)

	resp, err = drv.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, content, string(body))
}

func TestServer_NamespaceAccess(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	drv := newDriver(t, srv, cred, true)
	ctx := context.Background()

	op := atmos.Operation{Type: atmos.OpCreate, Item: atmos.Item{Name: "obj"}, DstPath: "/dir0"}
	req, err := drv.BuildRequest(ctx, srv.Addr(), op, strings.NewReader("v1"), 2)
	require.NoError(t, err)
	resp, err := drv.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data, ok := srv.Object(atmos.NamespaceURIBase + "/dir0/obj")
	require.True(t, ok)
	assert.Equal(t, "v1", string(data))

	op = atmos.Operation{Type: atmos.OpUpdate, Item: atmos.Item{Name: "obj"}, DstPath: "/dir0"}
	req, err = drv.BuildRequest(ctx, srv.Addr(), op, strings.NewReader("v2"), 2)
	require.NoError(t, err)
	resp, err = drv.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, _ = srv.Object(atmos.NamespaceURIBase + "/dir0/obj")
	assert.Equal(t, "v2", string(data))

	op = atmos.Operation{Type: atmos.OpDelete, Item: atmos.Item{Name: "obj"}, SrcPath: "/dir0"}
	req, err = drv.BuildRequest(ctx, srv.Addr(), op, nil, 0)
	require.NoError(t, err)
	resp, err = drv.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, ok = srv.Object(atmos.NamespaceURIBase + "/dir0/obj")
	assert.False(t, ok)
}

func TestServer_NamespacePathSharesObject(t *testing.T) {
	srv := atmostest.NewServer(cred)
	defer srv.Close()

	fs := newDriver(t, srv, cred, true)
	byID := newDriver(t, srv, cred, false)
	ctx := context.Background()

	send := func(drv *atmos.Driver, op atmos.Operation, body string) *http.Response {
		t.Helper()
		req, err := drv.BuildRequest(ctx, srv.Addr(), op, strings.NewReader(body), int64(len(body)))
		require.NoError(t, err)
		resp, err := drv.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp
	}

	resp := send(fs, atmos.Operation{Type: atmos.OpCreate, Item: atmos.Item{Name: "obj"}, DstPath: "/dir0"}, "v1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := atmos.ObjectIDFromLocation(resp)
	require.True(t, ok)
	location := atmos.ObjectsURIBase + "/" + id

	resp = send(fs, atmos.Operation{Type: atmos.OpUpdate, Item: atmos.Item{Name: "obj"}, DstPath: "/dir0"}, "v2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := srv.Object(location)
	require.True(t, ok)
	assert.Equal(t, "v2", string(data))

	resp = send(byID, atmos.Operation{Type: atmos.OpDelete, Item: atmos.Item{Name: id}}, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, ok = srv.Object(atmos.NamespaceURIBase + "/dir0/obj")
	assert.False(t, ok)
	_, ok = srv.Object(location)
	assert.False(t, ok)
}
