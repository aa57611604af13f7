package store

import (
	"context"

	"github.com/curiohq/curio/server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Users() Users
	Sessions() Sessions
	Collections() Collections
	Notes() Notes
	Events() Events
	Reports() Reports
	Workflows() Workflows
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
}

// Sessions is append-only: sessions are never updated in place. FindLatest
// selects by the exact (userID, query, source) triple; no normalization.
type Sessions interface {
	Create(ctx context.Context, s *model.SearchSession) (*model.SearchSession, error)
	FindLatest(ctx context.Context, userID, query, source string) (*model.SearchSession, error)
	List(ctx context.Context, userID string, limit int) ([]*model.SearchSession, error)
}

type Collections interface {
	// Create fails with model.ErrConflict when the user already has a
	// collection with this name.
	Create(ctx context.Context, c *model.Collection) (*model.Collection, error)
	// FindOrCreate is race-safe: concurrent calls for the same (user, name)
	// resolve to a single row via the unique index on (user_id, name).
	FindOrCreate(ctx context.Context, userID, name string) (*model.Collection, error)
	GetByID(ctx context.Context, collectionID string) (*model.Collection, error)
	List(ctx context.Context, userID string) ([]*model.Collection, error)
	Rename(ctx context.Context, collectionID, name string) (*model.Collection, error)
	Delete(ctx context.Context, collectionID string) error
	// AppendItems concatenates items after the existing ones atomically at
	// the storage layer; concurrent appends both land.
	AppendItems(ctx context.Context, collectionID string, items []model.CollectionItem) (*model.Collection, error)
	RemoveItem(ctx context.Context, collectionID, itemID string) (*model.Collection, error)
}

type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	GetByID(ctx context.Context, noteID string) (*model.Note, error)
	List(ctx context.Context, userID string) ([]*model.Note, error)
	Update(ctx context.Context, noteID string, title, content *string) (*model.Note, error)
	Delete(ctx context.Context, noteID string) error
}

type Events interface {
	Create(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error)
	GetByID(ctx context.Context, eventID string) (*model.CalendarEvent, error)
	List(ctx context.Context, userID string) ([]*model.CalendarEvent, error)
	Update(ctx context.Context, e *model.CalendarEvent) (*model.CalendarEvent, error)
	Delete(ctx context.Context, eventID string) error
}

type Reports interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	GetByID(ctx context.Context, reportID string) (*model.Report, error)
	List(ctx context.Context, userID string) ([]*model.Report, error)
	Delete(ctx context.Context, reportID string) error
}

type Workflows interface {
	Create(ctx context.Context, w *model.Workflow) (*model.Workflow, error)
	GetByID(ctx context.Context, workflowID string) (*model.Workflow, error)
	List(ctx context.Context, userID string) ([]*model.Workflow, error)
	// SetStatus records a terminal or transitional status; completed and
	// failed statuses also stamp completed_time.
	SetStatus(ctx context.Context, workflowID, status string, errorMessage *string, failedStep *int) error
	SetStep(ctx context.Context, workflowID string, currentStep int) error
	SetReport(ctx context.Context, workflowID, reportID string) error
	Delete(ctx context.Context, workflowID string) error
}
