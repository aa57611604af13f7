package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/curiohq/curio/server/internal/model"
)

// Client is a thin wrapper over the GitHub REST v3 API covering repository
// search and content listing. A token is optional; unauthenticated requests
// run under GitHub's lower rate limits.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/vnd.github+json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{client: c}
}

// Repo carries the subset of repository metadata the service uses.
type Repo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	HTMLURL       string `json:"html_url"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	Language      string `json:"language"`
	UpdatedAt     string `json:"updated_at"`
	DefaultBranch string `json:"default_branch"`
	Owner         *struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
	} `json:"owner"`
}

// ContentEntry is one file or directory from the contents API.
type ContentEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
}

func (c *Client) SearchRepositories(ctx context.Context, query string, limit int) ([]Repo, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        query,
			"sort":     "stars",
			"per_page": strconv.Itoa(limit),
		}).
		Get("/search/repositories")
	if err != nil {
		return nil, errors.Wrap(err, "github repo search")
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("github search status %d", resp.StatusCode())
	}

	var body struct {
		Items []Repo `json:"items"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, errors.Wrap(err, "decode github search response")
	}
	return body.Items, nil
}

func (c *Client) GetRepository(ctx context.Context, owner, repo string) (*Repo, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/repos/%s/%s", owner, repo))
	if err != nil {
		return nil, errors.Wrap(err, "github get repo")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, model.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("github repo status %d", resp.StatusCode())
	}

	var r Repo
	if err := json.Unmarshal(resp.Body(), &r); err != nil {
		return nil, errors.Wrap(err, "decode github repo")
	}
	return &r, nil
}

// GetContents lists a directory. The contents API returns an object rather
// than an array when path names a single file; that case is normalized to a
// one-element slice.
func (c *Client) GetContents(ctx context.Context, owner, repo, path string) ([]ContentEntry, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path))
	if err != nil {
		return nil, errors.Wrap(err, "github get contents")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, model.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("github contents status %d", resp.StatusCode())
	}

	raw := resp.Body()
	var entries []ContentEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}
	var single ContentEntry
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, errors.Wrap(err, "decode github contents")
	}
	return []ContentEntry{single}, nil
}
