package model

import "time"

// User represents an account in the system. Identity is established by an
// external provider; this record mirrors it for ownership checks.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	TimeZone     string    `json:"timeZone"`
	Status       string    `json:"status"`
	CreationTime time.Time `json:"creationTime"`
}

// RawResult is one provider-shaped search result record. The session store
// treats it as opaque JSON; extraction reads well-known fields out of it.
type RawResult map[string]interface{}

// SearchSession is an immutable snapshot of one search call's ordered result
// list, keyed by user, exact query text, and source. The most recently
// created session for a triple is authoritative.
type SearchSession struct {
	SessionID    string      `json:"sessionId"`
	UserID       string      `json:"userId"`
	Query        string      `json:"query"`
	Source       string      `json:"source"`
	Results      []RawResult `json:"results"`
	CreationTime time.Time   `json:"creationTime"`
}

// Collection item types.
const (
	ItemTypeArticle = "article"
	ItemTypeRepo    = "repo"
	ItemTypeImage   = "image"
	ItemTypePin     = "pin"
)

// CollectionItem is a normalized bookmark record. The id is assigned exactly
// once, at extraction or direct-add time, and is stable thereafter.
type CollectionItem struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Collection is a user-owned named bucket of bookmarked items. Insertion
// order is display order.
type Collection struct {
	CollectionID string           `json:"collectionId"`
	UserID       string           `json:"userId"`
	Name         string           `json:"name"`
	Items        []CollectionItem `json:"items"`
	CreationTime time.Time        `json:"creationTime"`
	UpdateTime   time.Time        `json:"updateTime"`
}

// Note is a free-form user note.
type Note struct {
	NoteID       string    `json:"noteId"`
	UserID       string    `json:"userId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// CalendarEvent is a scheduled item on the user's calendar.
type CalendarEvent struct {
	EventID      string     `json:"eventId"`
	UserID       string     `json:"userId"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
}

// ReportSection is one titled block of generated report content.
type ReportSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Report is the output of an AI workflow run.
type Report struct {
	ReportID           string          `json:"reportId"`
	UserID             string          `json:"userId"`
	WorkflowID         *string         `json:"workflowId,omitempty"`
	SourceCollectionID *string         `json:"sourceCollectionId,omitempty"`
	Title              string          `json:"title"`
	Summary            string          `json:"summary"`
	Format             string          `json:"format"`
	Sections           []ReportSection `json:"sections"`
	CreationTime       time.Time       `json:"creationTime"`
	UpdateTime         time.Time       `json:"updateTime"`
}

// Workflow statuses.
const (
	WorkflowPending   = "pending"
	WorkflowRunning   = "running"
	WorkflowCompleted = "completed"
	WorkflowFailed    = "failed"
)

// Workflow tracks one AI-assisted research run from request to report.
type Workflow struct {
	WorkflowID    string     `json:"workflowId"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Query         string     `json:"query"`
	Status        string     `json:"status"`
	CurrentStep   int        `json:"currentStep"`
	TotalSteps    int        `json:"totalSteps"`
	Sources       []string   `json:"sources"`
	Depth         string     `json:"depth"`
	OutputFormat  string     `json:"outputFormat"`
	ErrorMessage  *string    `json:"errorMessage,omitempty"`
	FailedStep    *int       `json:"failedStep,omitempty"`
	ReportID      *string    `json:"reportId,omitempty"`
	CreationTime  time.Time  `json:"creationTime"`
	CompletedTime *time.Time `json:"completedTime,omitempty"`
}
