package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sagarc03/atmos/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(true, false)
		_, ok := formatter.(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, false)
		_, ok := formatter.(*clientcli.HumanFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, true)
		hf, ok := formatter.(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	result := &clientcli.UploadResult{
		LocalPath: "local.txt",
		ObjectID:  "4ef49feaa106904c04ef4a066e778104f71f9d9",
		Size:      1024,
		Node:      "n1:9022",
	}

	t.Run("object id", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, result))

		output := buf.String()
		assert.Contains(t, output, "Uploaded: local.txt -> 4ef49feaa106904c04ef4a066e778104f71f9d9 (1.0 KB)")
		assert.Contains(t, output, "Node: n1:9022")
	})

	t.Run("quiet prints id only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, result))
		assert.Equal(t, "4ef49feaa106904c04ef4a066e778104f71f9d9\n", buf.String())
	})

	t.Run("namespace path", func(t *testing.T) {
		r := *result
		r.RemotePath = "/dir0/file.txt"

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, &r))
		assert.Contains(t, buf.String(), "-> /dir0/file.txt")
	})
}

func TestHumanFormatter_FormatDownload(t *testing.T) {
	t.Run("to file", func(t *testing.T) {
		var buf bytes.Buffer
		err := (&clientcli.HumanFormatter{}).FormatDownload(&buf, &clientcli.DownloadResult{
			RemotePath: "dir0/file.txt",
			LocalPath:  "file.txt",
			Size:       2048,
		})
		require.NoError(t, err)
		assert.Equal(t, "Downloaded: dir0/file.txt -> file.txt (2.0 KB)\n", buf.String())
	})

	t.Run("quiet", func(t *testing.T) {
		var buf bytes.Buffer
		err := (&clientcli.HumanFormatter{Quiet: true}).FormatDownload(&buf, &clientcli.DownloadResult{RemotePath: "a"})
		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestHumanFormatter_FormatDelete(t *testing.T) {
	results := []clientcli.DeleteResult{
		{Path: "a", Deleted: true},
		{Path: "b", Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatDelete(&buf, results))
	assert.Equal(t, "Deleted: a\nError: b - boom\n", buf.String())

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatDelete(&buf, results))
	assert.Equal(t, "Error: b - boom\n", buf.String())
}

func TestHumanFormatter_FormatCanonical(t *testing.T) {
	result := &clientcli.CanonicalResult{
		Method:    "GET",
		Path:      "/rest/objects/abc",
		UID:       "user1",
		Canonical: "GET\n\n\ndate\n/rest/objects/abc\nx-emc-uid:user1",
		Signature: "c2ln",
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatCanonical(&buf, result))
	output := buf.String()
	assert.Contains(t, output, "GET /rest/objects/abc\n")
	assert.Contains(t, output, "x-emc-signature: c2ln\n")
	assert.Contains(t, output, "--- canonical ---\n"+result.Canonical+"\n")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatCanonical(&buf, result))
	assert.Equal(t, "c2ln\n", buf.String())
}

func TestHumanFormatter_FormatSubtenant(t *testing.T) {
	var buf bytes.Buffer
	result := &clientcli.SubtenantResult{UID: "user1", Subtenant: "5cc59753"}
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatSubtenant(&buf, result))
	assert.Contains(t, buf.String(), "Subtenant: 5cc59753")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatSubtenant(&buf, result))
	assert.Equal(t, "5cc59753\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	f := &clientcli.JSONFormatter{}

	t.Run("upload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatUpload(&buf, &clientcli.UploadResult{LocalPath: "a", ObjectID: "id1", Size: 3}))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "id1", got["object_id"])
		assert.InDelta(t, 3, got["size_bytes"], 0)
		assert.NotContains(t, got, "remote_path")
	})

	t.Run("delete converts errors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatDelete(&buf, []clientcli.DeleteResult{{Path: "b", Err: errors.New("boom")}}))
		assert.JSONEq(t, `{"results":[{"path":"b","deleted":false,"error":"boom"}]}`, buf.String())
	})

	t.Run("canonical", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatCanonical(&buf, &clientcli.CanonicalResult{Method: "PUT", Canonical: "PUT\n"}))
		assert.Contains(t, buf.String(), `"canonical": "PUT\n"`)
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("bad")))
		assert.JSONEq(t, `{"error":"bad"}`, buf.String())
	})
}

func TestFormatProfiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Nodes: []string{"localhost:9022"}, UID: "user1", Secret: "u5QtPuQx+W5nrrQQEg7nArBqSgC8qLiDt2RhQthb"},
		{Name: "prod", Nodes: []string{"n1:9022", "n2:9022"}, Namespace: "ns1"},
	}

	t.Run("human list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "prod", false))
		output := buf.String()
		assert.Contains(t, output, "NODES")
		assert.Contains(t, output, "* prod")
		assert.Contains(t, output, "n1:9022,n2:9022")
		assert.Contains(t, output, "(not set)")
	})

	t.Run("human show masks secret", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[0], true, false))
		output := buf.String()
		assert.Contains(t, output, "Name:      local (default)")
		assert.Contains(t, output, "Secret:    u5Qt...Qthb")
	})

	t.Run("json list shows secrets on request", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileList(&buf, profiles, "local", true))

		var got struct {
			Profiles []struct {
				Name    string `json:"name"`
				Secret  string `json:"secret"`
				Default bool   `json:"default"`
			} `json:"profiles"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got.Profiles, 2)
		assert.Equal(t, profiles[0].Secret, got.Profiles[0].Secret)
		assert.True(t, got.Profiles[0].Default)
		assert.Empty(t, got.Profiles[1].Secret)
	})

	t.Run("json show", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileShow(&buf, profiles[1], false, false))
		assert.Contains(t, buf.String(), `"namespace": "ns1"`)
	})
}
