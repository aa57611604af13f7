package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// NewWithDB constructs a native Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users             { return &users{db: s.db} }
func (s *pgStore) Sessions() store.Sessions       { return &sessions{db: s.db} }
func (s *pgStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *pgStore) Notes() store.Notes             { return &notes{db: s.db} }
func (s *pgStore) Events() store.Events           { return &events{db: s.db} }
func (s *pgStore) Reports() store.Reports         { return &reports{db: s.db} }
func (s *pgStore) Workflows() store.Workflows     { return &workflows{db: s.db} }

// HealthPing implements health.HealthPinger for the Postgres-backed store.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, time_zone, status)
        VALUES ($1,$2,$3,$4,'ACTIVE')
        RETURNING creation_time
    `, m.UserID, m.Email, m.DisplayName, m.TimeZone)
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, time_zone, status, creation_time
        FROM users WHERE user_id=$1
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.TimeZone, &out.Status, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// --- Sessions ---

type sessions struct{ db *sql.DB }

func (s *sessions) Create(ctx context.Context, m *model.SearchSession) (*model.SearchSession, error) {
	id := m.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	results := m.Results
	if results == nil {
		results = []model.RawResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}
	var created time.Time
	row := s.db.QueryRowContext(ctx, `
        INSERT INTO search_sessions (session_id, user_id, query, source, results)
        VALUES ($1,$2,$3,$4,$5::jsonb)
        RETURNING creation_time
    `, id, m.UserID, m.Query, m.Source, string(raw))
	if err := row.Scan(&created); err != nil {
		return nil, err
	}
	return &model.SearchSession{SessionID: id, UserID: m.UserID, Query: m.Query, Source: m.Source, Results: results, CreationTime: created}, nil
}

func (s *sessions) FindLatest(ctx context.Context, userID, query, source string) (*model.SearchSession, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT session_id, results, creation_time
        FROM search_sessions
        WHERE user_id=$1 AND query=$2 AND source=$3
        ORDER BY creation_time DESC, session_id DESC
        LIMIT 1
    `, userID, query, source)
	out := model.SearchSession{UserID: userID, Query: query, Source: source}
	var raw []byte
	if err := row.Scan(&out.SessionID, &raw, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &out.Results); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *sessions) List(ctx context.Context, userID string, limit int) ([]*model.SearchSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, query, source, results, creation_time
        FROM search_sessions WHERE user_id=$1
        ORDER BY creation_time DESC LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.SearchSession
	for rows.Next() {
		out := model.SearchSession{UserID: userID}
		var raw []byte
		if err := rows.Scan(&out.SessionID, &out.Query, &out.Source, &raw, &out.CreationTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &out.Results); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

// --- Collections ---

type collections struct{ db *sql.DB }

func scanCollection(row interface{ Scan(...interface{}) error }) (*model.Collection, error) {
	var out model.Collection
	var raw []byte
	if err := row.Scan(&out.CollectionID, &out.UserID, &out.Name, &raw, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &out.Items); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []model.CollectionItem{}
	}
	return &out, nil
}

const collectionCols = `collection_id, user_id, name, items, creation_time, update_time`

func (c *collections) Create(ctx context.Context, m *model.Collection) (*model.Collection, error) {
	id := m.CollectionID
	if id == "" {
		id = uuid.New().String()
	}
	res, err := c.db.ExecContext(ctx, `
        INSERT INTO collections (collection_id, user_id, name, items)
        VALUES ($1,$2,$3,'[]'::jsonb)
        ON CONFLICT (user_id, name) DO NOTHING
    `, id, m.UserID, m.Name)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrConflict
	}
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=$1`, id)
	return scanCollection(row)
}

func (c *collections) FindOrCreate(ctx context.Context, userID, name string) (*model.Collection, error) {
	// Insert-or-ignore keyed by the unique (user_id, name) index, then
	// fetch whichever row won. Two racing callers converge on one row.
	if _, err := c.db.ExecContext(ctx, `
        INSERT INTO collections (collection_id, user_id, name, items)
        VALUES ($1,$2,$3,'[]'::jsonb)
        ON CONFLICT (user_id, name) DO NOTHING
    `, uuid.New().String(), userID, name); err != nil {
		return nil, err
	}
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE user_id=$1 AND name=$2`, userID, name)
	return scanCollection(row)
}

func (c *collections) GetByID(ctx context.Context, collectionID string) (*model.Collection, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=$1`, collectionID)
	return scanCollection(row)
}

func (c *collections) List(ctx context.Context, userID string) ([]*model.Collection, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT `+collectionCols+` FROM collections WHERE user_id=$1 ORDER BY update_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, col)
	}
	return res, rows.Err()
}

func (c *collections) Rename(ctx context.Context, collectionID, name string) (*model.Collection, error) {
	row := c.db.QueryRowContext(ctx, `
        UPDATE collections SET name=$2, update_time=now()
        WHERE collection_id=$1
        RETURNING `+collectionCols+`
    `, collectionID, name)
	return scanCollection(row)
}

func (c *collections) Delete(ctx context.Context, collectionID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM collections WHERE collection_id=$1`, collectionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (c *collections) AppendItems(ctx context.Context, collectionID string, items []model.CollectionItem) (*model.Collection, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	// Single jsonb concat keeps concurrent appends from losing updates.
	row := c.db.QueryRowContext(ctx, `
        UPDATE collections SET items = items || $2::jsonb, update_time = now()
        WHERE collection_id=$1
        RETURNING `+collectionCols+`
    `, collectionID, string(raw))
	return scanCollection(row)
}

func (c *collections) RemoveItem(ctx context.Context, collectionID, itemID string) (*model.Collection, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=$1 FOR UPDATE`, collectionID)
	col, err := scanCollection(row)
	if err != nil {
		return nil, err
	}
	kept := col.Items[:0:0]
	for _, it := range col.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if kept == nil {
		kept = []model.CollectionItem{}
	}
	raw, err := json.Marshal(kept)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
        UPDATE collections SET items=$2::jsonb, update_time=now() WHERE collection_id=$1
    `, collectionID, string(raw)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	col.Items = kept
	return col, nil
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	id := m.NoteID
	if id == "" {
		id = uuid.New().String()
	}
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO notes (note_id, user_id, title, content)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time, update_time
    `, id, m.UserID, m.Title, m.Content)
	out := *m
	out.NoteID = id
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID string) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT note_id, user_id, title, content, creation_time, update_time
        FROM notes WHERE note_id=$1
    `, noteID)
	if err := row.Scan(&out.NoteID, &out.UserID, &out.Title, &out.Content, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (n *notes) List(ctx context.Context, userID string) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT note_id, user_id, title, content, creation_time, update_time
        FROM notes WHERE user_id=$1 ORDER BY update_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		var out model.Note
		if err := rows.Scan(&out.NoteID, &out.UserID, &out.Title, &out.Content, &out.CreationTime, &out.UpdateTime); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func (n *notes) Update(ctx context.Context, noteID string, title, content *string) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        UPDATE notes
        SET title = COALESCE($2, title), content = COALESCE($3, content), update_time = now()
        WHERE note_id=$1
        RETURNING note_id, user_id, title, content, creation_time, update_time
    `, noteID, title, content)
	if err := row.Scan(&out.NoteID, &out.UserID, &out.Title, &out.Content, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (n *notes) Delete(ctx context.Context, noteID string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id=$1`, noteID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Events ---

type events struct{ db *sql.DB }

func (e *events) Create(ctx context.Context, m *model.CalendarEvent) (*model.CalendarEvent, error) {
	id := m.EventID
	if id == "" {
		id = uuid.New().String()
	}
	row := e.db.QueryRowContext(ctx, `
        INSERT INTO calendar_events (event_id, user_id, title, description, start_time, end_time)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING creation_time
    `, id, m.UserID, m.Title, m.Description, m.StartTime, m.EndTime)
	out := *m
	out.EventID = id
	if err := row.Scan(&out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (e *events) GetByID(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	var out model.CalendarEvent
	row := e.db.QueryRowContext(ctx, `
        SELECT event_id, user_id, title, description, start_time, end_time, creation_time
        FROM calendar_events WHERE event_id=$1
    `, eventID)
	if err := row.Scan(&out.EventID, &out.UserID, &out.Title, &out.Description, &out.StartTime, &out.EndTime, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (e *events) List(ctx context.Context, userID string) ([]*model.CalendarEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT event_id, user_id, title, description, start_time, end_time, creation_time
        FROM calendar_events WHERE user_id=$1 ORDER BY start_time
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.CalendarEvent
	for rows.Next() {
		var out model.CalendarEvent
		if err := rows.Scan(&out.EventID, &out.UserID, &out.Title, &out.Description, &out.StartTime, &out.EndTime, &out.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &out)
	}
	return res, rows.Err()
}

func (e *events) Update(ctx context.Context, m *model.CalendarEvent) (*model.CalendarEvent, error) {
	var out model.CalendarEvent
	row := e.db.QueryRowContext(ctx, `
        UPDATE calendar_events
        SET title=$2, description=$3, start_time=$4, end_time=$5
        WHERE event_id=$1
        RETURNING event_id, user_id, title, description, start_time, end_time, creation_time
    `, m.EventID, m.Title, m.Description, m.StartTime, m.EndTime)
	if err := row.Scan(&out.EventID, &out.UserID, &out.Title, &out.Description, &out.StartTime, &out.EndTime, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (e *events) Delete(ctx context.Context, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE event_id=$1`, eventID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Reports ---

type reports struct{ db *sql.DB }

func (r *reports) Create(ctx context.Context, m *model.Report) (*model.Report, error) {
	id := m.ReportID
	if id == "" {
		id = uuid.New().String()
	}
	sections := m.Sections
	if sections == nil {
		sections = []model.ReportSection{}
	}
	raw, err := json.Marshal(sections)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO reports (report_id, user_id, workflow_id, source_collection_id, title, summary, format, sections)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8::jsonb)
        RETURNING creation_time, update_time
    `, id, m.UserID, m.WorkflowID, m.SourceCollectionID, m.Title, m.Summary, m.Format, string(raw))
	out := *m
	out.ReportID = id
	out.Sections = sections
	if err := row.Scan(&out.CreationTime, &out.UpdateTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanReport(row interface{ Scan(...interface{}) error }) (*model.Report, error) {
	var out model.Report
	var raw []byte
	if err := row.Scan(&out.ReportID, &out.UserID, &out.WorkflowID, &out.SourceCollectionID, &out.Title, &out.Summary, &out.Format, &raw, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &out.Sections); err != nil {
		return nil, err
	}
	return &out, nil
}

const reportCols = `report_id, user_id, workflow_id, source_collection_id, title, summary, format, sections, creation_time, update_time`

func (r *reports) GetByID(ctx context.Context, reportID string) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportCols+` FROM reports WHERE report_id=$1`, reportID)
	return scanReport(row)
}

func (r *reports) List(ctx context.Context, userID string) ([]*model.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+reportCols+` FROM reports WHERE user_id=$1 ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}

func (r *reports) Delete(ctx context.Context, reportID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE report_id=$1`, reportID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Workflows ---

type workflows struct{ db *sql.DB }

const workflowCols = `workflow_id, user_id, title, description, query, status, current_step, total_steps, sources, depth, output_format, error_message, failed_step, report_id, creation_time, completed_time`

func scanWorkflow(row interface{ Scan(...interface{}) error }) (*model.Workflow, error) {
	var out model.Workflow
	var raw []byte
	if err := row.Scan(&out.WorkflowID, &out.UserID, &out.Title, &out.Description, &out.Query, &out.Status, &out.CurrentStep, &out.TotalSteps, &raw, &out.Depth, &out.OutputFormat, &out.ErrorMessage, &out.FailedStep, &out.ReportID, &out.CreationTime, &out.CompletedTime); err != nil {
		return nil, notFound(err)
	}
	if err := json.Unmarshal(raw, &out.Sources); err != nil {
		return nil, err
	}
	return &out, nil
}

func (w *workflows) Create(ctx context.Context, m *model.Workflow) (*model.Workflow, error) {
	id := m.WorkflowID
	if id == "" {
		id = uuid.New().String()
	}
	sources := m.Sources
	if sources == nil {
		sources = []string{}
	}
	raw, err := json.Marshal(sources)
	if err != nil {
		return nil, err
	}
	status := m.Status
	if status == "" {
		status = model.WorkflowPending
	}
	row := w.db.QueryRowContext(ctx, `
        INSERT INTO workflows (workflow_id, user_id, title, description, query, status, current_step, total_steps, sources, depth, output_format)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10,$11)
        RETURNING creation_time
    `, id, m.UserID, m.Title, m.Description, m.Query, status, m.CurrentStep, m.TotalSteps, string(raw), m.Depth, m.OutputFormat)
	out := *m
	out.WorkflowID = id
	out.Status = status
	out.Sources = sources
	if err := row.Scan(&out.CreationTime); err != nil {
		return nil, err
	}
	return &out, nil
}

func (w *workflows) GetByID(ctx context.Context, workflowID string) (*model.Workflow, error) {
	row := w.db.QueryRowContext(ctx, `SELECT `+workflowCols+` FROM workflows WHERE workflow_id=$1`, workflowID)
	return scanWorkflow(row)
}

func (w *workflows) List(ctx context.Context, userID string) ([]*model.Workflow, error) {
	rows, err := w.db.QueryContext(ctx, `
        SELECT `+workflowCols+` FROM workflows WHERE user_id=$1 ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Workflow
	for rows.Next() {
		wf, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, wf)
	}
	return res, rows.Err()
}

func (w *workflows) SetStatus(ctx context.Context, workflowID, status string, errorMessage *string, failedStep *int) error {
	res, err := w.db.ExecContext(ctx, `
        UPDATE workflows
        SET status=$2, error_message=$3, failed_step=$4,
            completed_time = CASE WHEN $2 IN ('completed','failed') THEN now() ELSE completed_time END
        WHERE workflow_id=$1
    `, workflowID, status, errorMessage, failedStep)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (w *workflows) SetStep(ctx context.Context, workflowID string, currentStep int) error {
	_, err := w.db.ExecContext(ctx, `UPDATE workflows SET current_step=$2 WHERE workflow_id=$1`, workflowID, currentStep)
	return err
}

func (w *workflows) SetReport(ctx context.Context, workflowID, reportID string) error {
	_, err := w.db.ExecContext(ctx, `UPDATE workflows SET report_id=$2 WHERE workflow_id=$1`, workflowID, reportID)
	return err
}

func (w *workflows) Delete(ctx context.Context, workflowID string) error {
	res, err := w.db.ExecContext(ctx, `DELETE FROM workflows WHERE workflow_id=$1`, workflowID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}
