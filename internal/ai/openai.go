package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/pkg/errors"

	"github.com/curiohq/curio/server/internal/model"
)

// OpenAISummarizer implements Summarizer over the OpenAI chat completions
// API.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// NewOpenAISummarizerWithBaseURL points the client at an alternate endpoint.
// Used by tests and by OpenAI-compatible local model servers.
func NewOpenAISummarizerWithBaseURL(apiKey, model, baseURL string) *OpenAISummarizer {
	return &OpenAISummarizer{
		client: openai.NewClient(option.WithAPIKey(apiKey), option.WithBaseURL(baseURL)),
		model:  model,
	}
}

func (s *OpenAISummarizer) complete(ctx context.Context, system, user string, maxTokens int64) (string, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *OpenAISummarizer) ComposeReport(ctx context.Context, query string, material []string, format string) (*ReportDraft, error) {
	prompt := fmt.Sprintf(`Write a research report answering: %s

Source material:

%s

Structure the report as markdown. Start with a one-paragraph executive summary, then 2-5 sections, each opened by a "## " heading.`,
		query, strings.Join(material, "\n\n---\n\n"))

	content, err := s.complete(ctx,
		"You are a research assistant that writes clear, well-sourced reports.",
		prompt, 2000)
	if err != nil {
		return nil, err
	}

	draft := parseReport(query, content)
	draft.Sections = renderSections(draft.Sections, format)
	return draft, nil
}

// parseReport splits model output on "## " headings. Text before the first
// heading becomes the summary; without headings the whole body is a single
// Overview section.
func parseReport(query, content string) *ReportDraft {
	draft := &ReportDraft{Title: query}

	lines := strings.Split(content, "\n")
	var current *model.ReportSection
	var preamble []string
	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			if current != nil {
				current.Content = strings.TrimSpace(current.Content)
				draft.Sections = append(draft.Sections, *current)
			}
			current = &model.ReportSection{Title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		if strings.HasPrefix(line, "# ") && current == nil && draft.Title == query {
			draft.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}
		if current == nil {
			preamble = append(preamble, line)
		} else {
			current.Content += line + "\n"
		}
	}
	if current != nil {
		current.Content = strings.TrimSpace(current.Content)
		draft.Sections = append(draft.Sections, *current)
	}

	draft.Summary = strings.TrimSpace(strings.Join(preamble, "\n"))
	if len(draft.Sections) == 0 {
		// No headings at all: the whole body becomes one section and the
		// summary is just its opening sentence.
		draft.Sections = []model.ReportSection{{Title: "Overview", Content: strings.TrimSpace(content)}}
		draft.Summary = firstSentence(strings.TrimSpace(content))
	}
	if draft.Summary == "" && len(draft.Sections) > 0 {
		draft.Summary = firstSentence(draft.Sections[0].Content)
	}
	return draft
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i >= 0 && i < len(s)-1 {
		return strings.TrimSpace(s[:i+1])
	}
	return strings.TrimSpace(s)
}

// renderSections strips markdown markers when plain text output is requested.
func renderSections(sections []model.ReportSection, format string) []model.ReportSection {
	if format != "text" {
		return sections
	}
	out := make([]model.ReportSection, len(sections))
	for i, sec := range sections {
		content := strings.NewReplacer("**", "", "*", "", "`", "").Replace(sec.Content)
		out[i] = model.ReportSection{Title: sec.Title, Content: content}
	}
	return out
}
