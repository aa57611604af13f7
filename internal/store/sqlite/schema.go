package sqlite

import (
	"context"
	"database/sql"
)

// schema mirrors the Postgres schema with SQLite-native types. Timestamps
// are written by the adapter; JSON columns hold serialized text.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    user_id       TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    display_name  TEXT,
    time_zone     TEXT NOT NULL DEFAULT 'UTC',
    status        TEXT NOT NULL DEFAULT 'ACTIVE',
    creation_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS search_sessions (
    session_id    TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    query         TEXT NOT NULL,
    source        TEXT NOT NULL,
    results       TEXT NOT NULL DEFAULT '[]',
    creation_time TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS search_sessions_lookup
    ON search_sessions (user_id, query, source, creation_time DESC);

CREATE TABLE IF NOT EXISTS collections (
    collection_id TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    name          TEXT NOT NULL,
    items         TEXT NOT NULL DEFAULT '[]',
    creation_time TIMESTAMP NOT NULL,
    update_time   TIMESTAMP NOT NULL,
    UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS notes (
    note_id       TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    title         TEXT NOT NULL,
    content       TEXT NOT NULL DEFAULT '',
    creation_time TIMESTAMP NOT NULL,
    update_time   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS calendar_events (
    event_id      TEXT PRIMARY KEY,
    user_id       TEXT NOT NULL,
    title         TEXT NOT NULL,
    description   TEXT,
    start_time    TIMESTAMP NOT NULL,
    end_time      TIMESTAMP,
    creation_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
    report_id            TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    workflow_id          TEXT,
    source_collection_id TEXT,
    title                TEXT NOT NULL,
    summary              TEXT NOT NULL DEFAULT '',
    format               TEXT NOT NULL DEFAULT 'markdown',
    sections             TEXT NOT NULL DEFAULT '[]',
    creation_time        TIMESTAMP NOT NULL,
    update_time          TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS workflows (
    workflow_id    TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL,
    title          TEXT NOT NULL,
    description    TEXT,
    query          TEXT NOT NULL,
    status         TEXT NOT NULL DEFAULT 'pending',
    current_step   INTEGER NOT NULL DEFAULT 0,
    total_steps    INTEGER NOT NULL DEFAULT 0,
    sources        TEXT NOT NULL DEFAULT '[]',
    depth          TEXT NOT NULL DEFAULT 'standard',
    output_format  TEXT NOT NULL DEFAULT 'markdown',
    error_message  TEXT,
    failed_step    INTEGER,
    report_id      TEXT,
    creation_time  TIMESTAMP NOT NULL,
    completed_time TIMESTAMP
);
`

// EnsureSchema applies the schema idempotently.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
