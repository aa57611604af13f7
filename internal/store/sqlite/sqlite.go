package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/curiohq/curio/server/internal/model"
	"github.com/curiohq/curio/server/internal/store"
)

// New opens (or creates) a SQLite database file, applies the schema, and
// returns a store over it. Used for local development and store tests.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB wires a store over an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users             { return &users{db: s.db} }
func (s *liteStore) Sessions() store.Sessions       { return &sessions{db: s.db} }
func (s *liteStore) Collections() store.Collections { return &collections{db: s.db} }
func (s *liteStore) Notes() store.Notes             { return &notes{db: s.db} }
func (s *liteStore) Events() store.Events           { return &events{db: s.db} }
func (s *liteStore) Reports() store.Reports         { return &reports{db: s.db} }
func (s *liteStore) Workflows() store.Workflows     { return &workflows{db: s.db} }

// HealthPing implements health.HealthPinger.
func (s *liteStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	now := time.Now().UTC()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, time_zone, status, creation_time)
        VALUES (?,?,?,?,'ACTIVE',?)
    `, m.UserID, m.Email, m.DisplayName, m.TimeZone, now)
	if err != nil {
		return nil, err
	}
	out := *m
	out.Status = "ACTIVE"
	out.CreationTime = now
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, time_zone, status, creation_time
        FROM users WHERE user_id=?
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
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, `
        INSERT INTO search_sessions (session_id, user_id, query, source, results, creation_time)
        VALUES (?,?,?,?,?,?)
    `, id, m.UserID, m.Query, m.Source, string(raw), now); err != nil {
		return nil, err
	}
	return &model.SearchSession{SessionID: id, UserID: m.UserID, Query: m.Query, Source: m.Source, Results: results, CreationTime: now}, nil
}

func (s *sessions) FindLatest(ctx context.Context, userID, query, source string) (*model.SearchSession, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT session_id, results, creation_time
        FROM search_sessions
        WHERE user_id=? AND query=? AND source=?
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
        FROM search_sessions WHERE user_id=?
        ORDER BY creation_time DESC LIMIT ?
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

const collectionCols = `collection_id, user_id, name, items, creation_time, update_time`

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

func (c *collections) Create(ctx context.Context, m *model.Collection) (*model.Collection, error) {
	id := m.CollectionID
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	res, err := c.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO collections (collection_id, user_id, name, items, creation_time, update_time)
        VALUES (?,?,?,'[]',?,?)
    `, id, m.UserID, m.Name, now, now)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrConflict
	}
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=?`, id)
	return scanCollection(row)
}

func (c *collections) FindOrCreate(ctx context.Context, userID, name string) (*model.Collection, error) {
	now := time.Now().UTC()
	if _, err := c.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO collections (collection_id, user_id, name, items, creation_time, update_time)
        VALUES (?,?,?,'[]',?,?)
    `, uuid.New().String(), userID, name, now, now); err != nil {
		return nil, err
	}
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE user_id=? AND name=?`, userID, name)
	return scanCollection(row)
}

func (c *collections) GetByID(ctx context.Context, collectionID string) (*model.Collection, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=?`, collectionID)
	return scanCollection(row)
}

func (c *collections) List(ctx context.Context, userID string) ([]*model.Collection, error) {
	rows, err := c.db.QueryContext(ctx, `
        SELECT `+collectionCols+` FROM collections WHERE user_id=? ORDER BY update_time DESC
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
	res, err := c.db.ExecContext(ctx, `
        UPDATE collections SET name=?, update_time=? WHERE collection_id=?
    `, name, time.Now().UTC(), collectionID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return c.GetByID(ctx, collectionID)
}

func (c *collections) Delete(ctx context.Context, collectionID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM collections WHERE collection_id=?`, collectionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (c *collections) AppendItems(ctx context.Context, collectionID string, items []model.CollectionItem) (*model.Collection, error) {
	// The pool is capped at one connection (see Open), so the read-modify-write
	// inside the transaction cannot interleave with a concurrent append.
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=?`, collectionID)
	col, err := scanCollection(row)
	if err != nil {
		return nil, err
	}
	col.Items = append(col.Items, items...)
	raw, err := json.Marshal(col.Items)
	if err != nil {
		return nil, err
	}
	col.UpdateTime = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        UPDATE collections SET items=?, update_time=? WHERE collection_id=?
    `, string(raw), col.UpdateTime, collectionID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return col, nil
}

func (c *collections) RemoveItem(ctx context.Context, collectionID, itemID string) (*model.Collection, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+collectionCols+` FROM collections WHERE collection_id=?`, collectionID)
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
	col.UpdateTime = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
        UPDATE collections SET items=?, update_time=? WHERE collection_id=?
    `, string(raw), col.UpdateTime, collectionID); err != nil {
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
	now := time.Now().UTC()
	if _, err := n.db.ExecContext(ctx, `
        INSERT INTO notes (note_id, user_id, title, content, creation_time, update_time)
        VALUES (?,?,?,?,?,?)
    `, id, m.UserID, m.Title, m.Content, now, now); err != nil {
		return nil, err
	}
	out := *m
	out.NoteID = id
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID string) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT note_id, user_id, title, content, creation_time, update_time
        FROM notes WHERE note_id=?
    `, noteID)
	if err := row.Scan(&out.NoteID, &out.UserID, &out.Title, &out.Content, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (n *notes) List(ctx context.Context, userID string) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT note_id, user_id, title, content, creation_time, update_time
        FROM notes WHERE user_id=? ORDER BY update_time DESC
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
	res, err := n.db.ExecContext(ctx, `
        UPDATE notes
        SET title = COALESCE(?, title), content = COALESCE(?, content), update_time = ?
        WHERE note_id=?
    `, title, content, time.Now().UTC(), noteID)
	if err != nil {
		return nil, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return nil, model.ErrNotFound
	}
	return n.GetByID(ctx, noteID)
}

func (n *notes) Delete(ctx context.Context, noteID string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id=?`, noteID)
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
	now := time.Now().UTC()
	if _, err := e.db.ExecContext(ctx, `
        INSERT INTO calendar_events (event_id, user_id, title, description, start_time, end_time, creation_time)
        VALUES (?,?,?,?,?,?,?)
    `, id, m.UserID, m.Title, m.Description, m.StartTime, m.EndTime, now); err != nil {
		return nil, err
	}
	out := *m
	out.EventID = id
	out.CreationTime = now
	return &out, nil
}

func (e *events) GetByID(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	var out model.CalendarEvent
	row := e.db.QueryRowContext(ctx, `
        SELECT event_id, user_id, title, description, start_time, end_time, creation_time
        FROM calendar_events WHERE event_id=?
    `, eventID)
	if err := row.Scan(&out.EventID, &out.UserID, &out.Title, &out.Description, &out.StartTime, &out.EndTime, &out.CreationTime); err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (e *events) List(ctx context.Context, userID string) ([]*model.CalendarEvent, error) {
	rows, err := e.db.QueryContext(ctx, `
        SELECT event_id, user_id, title, description, start_time, end_time, creation_time
        FROM calendar_events WHERE user_id=? ORDER BY start_time
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
	res, err := e.db.ExecContext(ctx, `
        UPDATE calendar_events SET title=?, description=?, start_time=?, end_time=? WHERE event_id=?
    `, m.Title, m.Description, m.StartTime, m.EndTime, m.EventID)
	if err != nil {
		return nil, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return nil, model.ErrNotFound
	}
	return e.GetByID(ctx, m.EventID)
}

func (e *events) Delete(ctx context.Context, eventID string) error {
	res, err := e.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE event_id=?`, eventID)
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

const reportCols = `report_id, user_id, workflow_id, source_collection_id, title, summary, format, sections, creation_time, update_time`

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
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `
        INSERT INTO reports (report_id, user_id, workflow_id, source_collection_id, title, summary, format, sections, creation_time, update_time)
        VALUES (?,?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.WorkflowID, m.SourceCollectionID, m.Title, m.Summary, m.Format, string(raw), now, now); err != nil {
		return nil, err
	}
	out := *m
	out.ReportID = id
	out.Sections = sections
	out.CreationTime = now
	out.UpdateTime = now
	return &out, nil
}

func (r *reports) GetByID(ctx context.Context, reportID string) (*model.Report, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reportCols+` FROM reports WHERE report_id=?`, reportID)
	return scanReport(row)
}

func (r *reports) List(ctx context.Context, userID string) ([]*model.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT `+reportCols+` FROM reports WHERE user_id=? ORDER BY creation_time DESC
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE report_id=?`, reportID)
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
	now := time.Now().UTC()
	if _, err := w.db.ExecContext(ctx, `
        INSERT INTO workflows (workflow_id, user_id, title, description, query, status, current_step, total_steps, sources, depth, output_format, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
    `, id, m.UserID, m.Title, m.Description, m.Query, status, m.CurrentStep, m.TotalSteps, string(raw), m.Depth, m.OutputFormat, now); err != nil {
		return nil, err
	}
	out := *m
	out.WorkflowID = id
	out.Status = status
	out.Sources = sources
	out.CreationTime = now
	return &out, nil
}

func (w *workflows) GetByID(ctx context.Context, workflowID string) (*model.Workflow, error) {
	row := w.db.QueryRowContext(ctx, `SELECT `+workflowCols+` FROM workflows WHERE workflow_id=?`, workflowID)
	return scanWorkflow(row)
}

func (w *workflows) List(ctx context.Context, userID string) ([]*model.Workflow, error) {
	rows, err := w.db.QueryContext(ctx, `
        SELECT `+workflowCols+` FROM workflows WHERE user_id=? ORDER BY creation_time DESC
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
	var completed interface{}
	if status == model.WorkflowCompleted || status == model.WorkflowFailed {
		completed = time.Now().UTC()
	}
	res, err := w.db.ExecContext(ctx, `
        UPDATE workflows
        SET status=?, error_message=?, failed_step=?, completed_time=COALESCE(?, completed_time)
        WHERE workflow_id=?
    `, status, errorMessage, failedStep, completed, workflowID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (w *workflows) SetStep(ctx context.Context, workflowID string, currentStep int) error {
	_, err := w.db.ExecContext(ctx, `UPDATE workflows SET current_step=? WHERE workflow_id=?`, currentStep, workflowID)
	return err
}

func (w *workflows) SetReport(ctx context.Context, workflowID, reportID string) error {
	_, err := w.db.ExecContext(ctx, `UPDATE workflows SET report_id=? WHERE workflow_id=?`, reportID, workflowID)
	return err
}

func (w *workflows) Delete(ctx context.Context, workflowID string) error {
	res, err := w.db.ExecContext(ctx, `DELETE FROM workflows WHERE workflow_id=?`, workflowID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}
