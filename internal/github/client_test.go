package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPullFilesPaginates(t *testing.T) {
	pages := map[string][]PullFile{}
	first := make([]PullFile, perPage)
	for i := range first {
		first[i] = PullFile{Filename: fmt.Sprintf("file%d.go", i), Status: "modified"}
	}
	pages["1"] = first
	pages["2"] = []PullFile{{Filename: "docs/api.md", Status: "modified", Additions: 10, Deletions: 2}}

	var gotAuth, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/widgets/pulls/42/files", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")

		page := r.URL.Query().Get("page")
		require.NoError(t, json.NewEncoder(w).Encode(pages[page]))
	}))
	defer server.Close()

	client := NewClient("test-token", server.URL)
	files, err := client.ListPullFiles(context.Background(), "acme/widgets", 42)

	require.NoError(t, err)
	assert.Len(t, files, perPage+1)
	assert.Equal(t, "docs/api.md", files[perPage].Filename)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/vnd.github+json", gotAccept)
}

func TestListPullFilesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	_, err := client.ListPullFiles(context.Background(), "acme/widgets", 42)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestGetFileContentDecodesBase64(t *testing.T) {
	content := "# API Reference\n\nAuthenticate with a bearer token.\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/widgets/contents/docs/api.md", r.URL.Path)
		require.Equal(t, "main", r.URL.Query().Get("ref"))

		resp := contentResponse{
			Content:  base64.StdEncoding.EncodeToString([]byte(content)),
			Encoding: "base64",
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	got, err := client.GetFileContent(context.Background(), "acme/widgets", "docs/api.md", "main")

	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestListDocFilesFiltersTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/widgets/git/trees/main", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("recursive"))

		resp := treeResponse{Tree: []TreeEntry{
			{Path: "README.md", Type: "blob"},
			{Path: "docs", Type: "tree"},
			{Path: "docs/api.md", Type: "blob"},
			{Path: "main.go", Type: "blob"},
			{Path: "docs/runbook.MD", Type: "blob"},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	entries, err := client.ListDocFiles(context.Background(), "acme/widgets", "main", []string{".md"})

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "README.md", entries[0].Path)
	assert.Equal(t, "docs/api.md", entries[1].Path)
	assert.Equal(t, "docs/runbook.MD", entries[2].Path)
}

func TestCreateAndUpdateIssueComment(t *testing.T) {
	var created, updated string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/repos/acme/widgets/issues/42/comments":
			created = payload["body"]
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPatch && r.URL.Path == "/repos/acme/widgets/issues/comments/7":
			updated = payload["body"]
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient("", server.URL)
	require.NoError(t, client.CreateIssueComment(context.Background(), "acme/widgets", 42, "hello"))
	require.NoError(t, client.UpdateIssueComment(context.Background(), "acme/widgets", 7, "revised"))

	assert.Equal(t, "hello", created)
	assert.Equal(t, "revised", updated)
}
