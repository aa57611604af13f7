package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/curiohq/curio/server/internal/model"
)

// SerpProvider searches the web through the SerpAPI Google engine.
type SerpProvider struct {
	client *resty.Client
	apiKey string
}

func NewSerpProvider(baseURL, apiKey string) *SerpProvider {
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)
	return &SerpProvider{client: c, apiKey: apiKey}
}

func (p *SerpProvider) Name() string { return "google" }

type serpOrganicResult struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Snippet   string `json:"snippet"`
	Thumbnail string `json:"thumbnail"`
	Source    string `json:"source"`
}

type serpResponse struct {
	OrganicResults []serpOrganicResult `json:"organic_results"`
	Error          string              `json:"error"`
}

func (p *SerpProvider) Search(ctx context.Context, query string, limit int) ([]model.RawResult, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  "google",
			"q":       query,
			"api_key": p.apiKey,
			"num":     strconv.Itoa(limit),
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("serpapi status %d", resp.StatusCode())
	}

	var body serpResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", body.Error)
	}

	out := make([]model.RawResult, 0, len(body.OrganicResults))
	for _, r := range body.OrganicResults {
		source := r.Source
		if source == "" {
			if u, err := url.Parse(r.Link); err == nil {
				source = u.Hostname()
			}
		}
		out = append(out, model.RawResult{
			"id":        strconv.Itoa(r.Position),
			"title":     r.Title,
			"url":       r.Link,
			"snippet":   r.Snippet,
			"thumbnail": r.Thumbnail,
			"source":    source,
			"position":  r.Position,
		})
	}
	return out, nil
}
