package search

import (
	"context"
	"strconv"

	"github.com/curiohq/curio/server/internal/github"
	"github.com/curiohq/curio/server/internal/model"
)

// GitHubProvider searches repositories through the GitHub REST API.
type GitHubProvider struct {
	client *github.Client
}

func NewGitHubProvider(client *github.Client) *GitHubProvider {
	return &GitHubProvider{client: client}
}

func (p *GitHubProvider) Name() string { return "github" }

func (p *GitHubProvider) Search(ctx context.Context, query string, limit int) ([]model.RawResult, error) {
	repos, err := p.client.SearchRepositories(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.RawResult, 0, len(repos))
	for _, r := range repos {
		// repos without an owner occasionally appear in search results;
		// they cannot be bookmarked meaningfully
		if r.Owner == nil {
			continue
		}
		lang := r.Language
		if lang == "" {
			lang = "Unknown"
		}
		out = append(out, model.RawResult{
			"id":          strconv.FormatInt(r.ID, 10),
			"name":        r.Name,
			"fullName":    r.FullName,
			"description": r.Description,
			"url":         r.HTMLURL,
			"stars":       r.Stars,
			"forks":       r.Forks,
			"language":    lang,
			"updatedAt":   r.UpdatedAt,
			"owner":       r.Owner.Login,
		})
	}
	return out, nil
}
