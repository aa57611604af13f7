package workflows

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/curiohq/curio/server/internal/ai"
	"github.com/curiohq/curio/server/internal/bookmark"
	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/search"
	"github.com/curiohq/curio/server/internal/store"
)

// Step numbers reported through workflow progress.
const (
	StepGather  = 1
	StepCompose = 2
	StepPersist = 3

	TotalSteps = 3
)

// resultLimitForDepth sizes the gather step per configured depth.
func resultLimitForDepth(depth string) int {
	switch depth {
	case "quick":
		return 5
	case "deep":
		return 20
	default:
		return 10
	}
}

// Runner executes research workflows in the background, one goroutine per
// run. Each run gathers search results for the workflow query, composes a
// report from them, and persists the report linked back to the workflow.
type Runner struct {
	store      store.Store
	registry   *search.Registry
	summarizer ai.Summarizer
	log        zerolog.Logger

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(s store.Store, registry *search.Registry, summarizer ai.Summarizer, log zerolog.Logger) *Runner {
	return &Runner{
		store:      s,
		registry:   registry,
		summarizer: summarizer,
		log:        log.With().Str("component", "workflows").Logger(),
		running:    make(map[string]context.CancelFunc),
	}
}

// Start launches a background run for the workflow. The workflow row must
// already exist in pending state.
func (r *Runner) Start(wf *model.Workflow) {
	ctx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.running[wf.WorkflowID] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.running, wf.WorkflowID)
			r.mu.Unlock()
			cancel()
		}()
		r.run(ctx, wf)
	}()
}

// Cancel stops an in-flight run. It reports whether the workflow was running
// here; the caller owns the status transition in the store.
func (r *Runner) Cancel(workflowID string) bool {
	r.mu.Lock()
	cancel, ok := r.running[workflowID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Shutdown waits for in-flight runs to finish or the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run(ctx context.Context, wf *model.Workflow) {
	log := r.log.With().Str("workflowId", wf.WorkflowID).Logger()
	bg := context.Background()

	if err := r.store.Workflows().SetStatus(bg, wf.WorkflowID, model.WorkflowRunning, nil, nil); err != nil {
		log.Error().Err(err).Msg("failed to mark workflow running")
		return
	}

	material, err := r.gather(ctx, wf)
	if r.bail(ctx, log, wf.WorkflowID, StepGather, err) {
		return
	}

	if err := r.store.Workflows().SetStep(bg, wf.WorkflowID, StepCompose); err != nil {
		log.Warn().Err(err).Msg("failed to record step")
	}
	draft, err := r.summarizer.ComposeReport(ctx, wf.Query, material, wf.OutputFormat)
	if r.bail(ctx, log, wf.WorkflowID, StepCompose, err) {
		return
	}

	if err := r.store.Workflows().SetStep(bg, wf.WorkflowID, StepPersist); err != nil {
		log.Warn().Err(err).Msg("failed to record step")
	}
	title := draft.Title
	if title == "" {
		title = wf.Title
	}
	report, err := r.store.Reports().Create(bg, &model.Report{
		UserID:     wf.UserID,
		WorkflowID: &wf.WorkflowID,
		Title:      title,
		Summary:    draft.Summary,
		Format:     wf.OutputFormat,
		Sections:   draft.Sections,
	})
	if r.bail(ctx, log, wf.WorkflowID, StepPersist, err) {
		return
	}
	if err := r.store.Workflows().SetReport(bg, wf.WorkflowID, report.ReportID); err != nil {
		r.fail(log, wf.WorkflowID, StepPersist, err)
		return
	}
	if err := r.store.Workflows().SetStatus(bg, wf.WorkflowID, model.WorkflowCompleted, nil, nil); err != nil {
		log.Error().Err(err).Msg("failed to mark workflow completed")
		return
	}
	log.Info().Str("reportId", report.ReportID).Msg("workflow completed")
}

// gather runs one search per configured source and flattens the results into
// prompt material. Each search is recorded as a session, the same as an
// interactive search would be.
func (r *Runner) gather(ctx context.Context, wf *model.Workflow) ([]string, error) {
	limit := resultLimitForDepth(wf.Depth)

	var material []string
	for _, searchType := range wf.Sources {
		source := bookmark.SourceForSearchType(searchType)
		provider, err := r.registry.Provider(source)
		if err != nil {
			return nil, err
		}
		results, err := provider.Search(ctx, wf.Query, limit)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", source, err)
		}
		if _, err := r.store.Sessions().Create(ctx, &model.SearchSession{
			UserID:  wf.UserID,
			Query:   wf.Query,
			Source:  source,
			Results: results,
		}); err != nil {
			r.log.Warn().Err(err).Str("source", source).Msg("failed to record gather session")
		}
		for _, res := range results {
			if m := materialFromResult(res); m != "" {
				material = append(material, m)
			}
		}
	}
	if len(material) == 0 {
		return nil, fmt.Errorf("no source material found for query %q", wf.Query)
	}
	return material, nil
}

func materialFromResult(r model.RawResult) string {
	var parts []string
	for _, key := range []string{"title", "fullName", "snippet", "description", "alt", "url"} {
		if v, ok := r[key].(string); ok && v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " - ")
}

// bail handles the end of a step: a cancelled context means the cancel path
// already recorded the failure, any other error records it here.
func (r *Runner) bail(ctx context.Context, log zerolog.Logger, workflowID string, step int, err error) bool {
	if ctx.Err() != nil {
		log.Info().Int("step", step).Msg("workflow cancelled")
		return true
	}
	if err != nil {
		r.fail(log, workflowID, step, err)
		return true
	}
	return false
}

func (r *Runner) fail(log zerolog.Logger, workflowID string, step int, err error) {
	msg := err.Error()
	if serr := r.store.Workflows().SetStatus(context.Background(), workflowID, model.WorkflowFailed, &msg, &step); serr != nil {
		log.Error().Err(serr).Msg("failed to record workflow failure")
	}
	log.Error().Err(err).Int("step", step).Msg("workflow failed")
}
