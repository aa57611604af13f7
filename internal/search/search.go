package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/curiohq/curio/server/internal/model"
)

// Provider performs a live search against one upstream source and returns
// results in the provider's normalized shape. Results are stored verbatim in
// search sessions, so the shape a provider emits is the shape bookmarking
// sees later.
type Provider interface {
	// Name is the session source identifier ("google", "pexels", "github").
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.RawResult, error)
}

// Registry resolves providers by source name.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(ps ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		r.providers[p.Name()] = p
	}
	return r
}

func (r *Registry) Provider(source string) (Provider, error) {
	p, ok := r.providers[source]
	if !ok {
		return nil, fmt.Errorf("%w: unknown search source %q", model.ErrValidation, source)
	}
	return p, nil
}

func (r *Registry) Sources() []string {
	out := make([]string, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
