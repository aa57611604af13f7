package ai

import (
	"context"

	"github.com/curiohq/curio/server/internal/model"
)

// Summarizer turns gathered research material into report content. The
// workflow engine depends on this interface so runs are testable without a
// model behind them.
type Summarizer interface {
	// ComposeReport produces a titled, sectioned report answering query from
	// the given source material, rendered in format ("markdown" or "text").
	ComposeReport(ctx context.Context, query string, material []string, format string) (*ReportDraft, error)
}

// ReportDraft is generated report content before persistence.
type ReportDraft struct {
	Title    string
	Summary  string
	Sections []model.ReportSection
}
