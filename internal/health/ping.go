package health

import "context"

// HealthPinger is optionally implemented by dependencies that can probe
// their backing resource directly. A nil return means healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
