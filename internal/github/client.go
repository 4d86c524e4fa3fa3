// Package github is a minimal GitHub REST client covering the handful of
// endpoints the classification and drift pipelines call.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	perPage        = 100
)

// Client talks to the GitHub REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a GitHub client. baseURL may be empty for api.github.com;
// it is overridable for GitHub Enterprise and tests.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// PullRequest is the subset of PR metadata the pipelines use.
type PullRequest struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
}

// PullFile is one file in a pull request diff.
type PullFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch"`
}

// TreeEntry is one object in a git tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	SHA  string `json:"sha"`
	Size int    `json:"size"`
}

type treeResponse struct {
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

// Comment is an issue/PR comment.
type Comment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// GetPull fetches pull request metadata.
func (c *Client) GetPull(ctx context.Context, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/pulls/%d", repo, number)
	if err := c.get(ctx, path, &pr); err != nil {
		return nil, fmt.Errorf("fetching pull %s#%d: %w", repo, number, err)
	}
	return &pr, nil
}

// ListPullFiles fetches every changed file in a pull request, following
// pagination.
func (c *Client) ListPullFiles(ctx context.Context, repo string, number int) ([]PullFile, error) {
	var all []PullFile
	page := 1

	for {
		path := fmt.Sprintf("/repos/%s/pulls/%d/files?per_page=%d&page=%d", repo, number, perPage, page)
		var files []PullFile
		if err := c.get(ctx, path, &files); err != nil {
			return nil, fmt.Errorf("listing pull files %s#%d: %w", repo, number, err)
		}
		all = append(all, files...)

		if len(files) < perPage {
			break
		}
		page++
	}
	return all, nil
}

// ListDocFiles walks the repository tree at ref and returns blob paths
// matching any of the given suffixes (e.g. ".md"). Empty suffixes match
// everything.
func (c *Client) ListDocFiles(ctx context.Context, repo, ref string, suffixes []string) ([]TreeEntry, error) {
	if ref == "" {
		ref = "HEAD"
	}
	path := fmt.Sprintf("/repos/%s/git/trees/%s?recursive=1", repo, url.PathEscape(ref))

	var tree treeResponse
	if err := c.get(ctx, path, &tree); err != nil {
		return nil, fmt.Errorf("listing tree %s@%s: %w", repo, ref, err)
	}

	var matched []TreeEntry
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		if matchesSuffix(entry.Path, suffixes) {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

// GetFileContent fetches and decodes a file's content at ref.
func (c *Client) GetFileContent(ctx context.Context, repo, filePath, ref string) (string, error) {
	path := fmt.Sprintf("/repos/%s/contents/%s", repo, escapePath(filePath))
	if ref != "" {
		path += "?ref=" + url.QueryEscape(ref)
	}

	var content contentResponse
	if err := c.get(ctx, path, &content); err != nil {
		return "", fmt.Errorf("fetching content %s:%s: %w", repo, filePath, err)
	}

	if content.Encoding != "base64" {
		return content.Content, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decoding content %s:%s: %w", repo, filePath, err)
	}
	return string(decoded), nil
}

// ListIssueComments fetches the comments on a PR (PRs share the issues
// comment API).
func (c *Client) ListIssueComments(ctx context.Context, repo string, number int) ([]Comment, error) {
	var all []Comment
	page := 1

	for {
		path := fmt.Sprintf("/repos/%s/issues/%d/comments?per_page=%d&page=%d", repo, number, perPage, page)
		var comments []Comment
		if err := c.get(ctx, path, &comments); err != nil {
			return nil, fmt.Errorf("listing comments %s#%d: %w", repo, number, err)
		}
		all = append(all, comments...)

		if len(comments) < perPage {
			break
		}
		page++
	}
	return all, nil
}

// CreateIssueComment posts a comment on a PR.
func (c *Client) CreateIssueComment(ctx context.Context, repo string, number int, body string) error {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", repo, number)
	return c.send(ctx, http.MethodPost, path, map[string]string{"body": body})
}

// UpdateIssueComment replaces the body of an existing comment.
func (c *Client) UpdateIssueComment(ctx context.Context, repo string, commentID int64, body string) error {
	path := fmt.Sprintf("/repos/%s/issues/comments/%d", repo, commentID)
	return c.send(ctx, http.MethodPatch, path, map[string]string{"body": body})
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
}

func matchesSuffix(path string, suffixes []string) bool {
	if len(suffixes) == 0 {
		return true
	}
	lower := strings.ToLower(path)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
