package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/curiohq/curio/server/internal/model"
)

// PexelsProvider searches stock photos through the Pexels v1 API.
type PexelsProvider struct {
	client *resty.Client
}

func NewPexelsProvider(baseURL, apiKey string) *PexelsProvider {
	if baseURL == "" {
		baseURL = "https://api.pexels.com"
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", apiKey).
		SetTimeout(30 * time.Second)
	return &PexelsProvider{client: c}
}

func (p *PexelsProvider) Name() string { return "pexels" }

type pexelsPhoto struct {
	ID           int64  `json:"id"`
	URL          string `json:"url"`
	Photographer string `json:"photographer"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Alt          string `json:"alt"`
	Src          struct {
		Original string `json:"original"`
		Large2x  string `json:"large2x"`
		Medium   string `json:"medium"`
	} `json:"src"`
}

type pexelsResponse struct {
	Photos []pexelsPhoto `json:"photos"`
}

func (p *PexelsProvider) Search(ctx context.Context, query string, limit int) ([]model.RawResult, error) {
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    query,
			"per_page": strconv.Itoa(limit),
			"page":     "1",
		}).
		Get("/v1/search")
	if err != nil {
		return nil, fmt.Errorf("pexels request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("pexels status %d", resp.StatusCode())
	}

	var body pexelsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}

	out := make([]model.RawResult, 0, len(body.Photos))
	for _, ph := range body.Photos {
		out = append(out, model.RawResult{
			"id":           strconv.FormatInt(ph.ID, 10),
			"url":          ph.URL,
			"imageUrl":     ph.Src.Large2x,
			"thumbnail":    ph.Src.Medium,
			"photographer": ph.Photographer,
			"title":        "Photo by " + ph.Photographer,
			"width":        ph.Width,
			"height":       ph.Height,
			"alt":          ph.Alt,
		})
	}
	return out, nil
}
