package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'User'
                  CHECK (role IN ('User', 'Admin', 'LogisticsOfficer', 'SystemAdmin')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_items (
    id           INTEGER PRIMARY KEY,
    name         TEXT NOT NULL UNIQUE,
    category     TEXT NOT NULL DEFAULT '',
    quantity     INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    min_quantity INTEGER NOT NULL DEFAULT 0 CHECK (min_quantity >= 0),
    unit         TEXT NOT NULL DEFAULT 'pcs',
    location     TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'in-stock'
                 CHECK (status IN ('in-stock', 'in-use', 'under-repair', 'damaged')),
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_by   INTEGER REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS requests (
    id           INTEGER PRIMARY KEY,
    item_name    TEXT NOT NULL,
    quantity     INTEGER NOT NULL CHECK (quantity > 0),
    unit         TEXT NOT NULL DEFAULT 'pcs',
    purpose      TEXT NOT NULL DEFAULT '',
    priority     TEXT NOT NULL DEFAULT 'normal'
                 CHECK (priority IN ('low', 'normal', 'high', 'urgent')),
    status       TEXT NOT NULL DEFAULT 'pending'
                 CHECK (status IN ('pending', 'approved', 'rejected', 'completed')),
    requester_id INTEGER NOT NULL REFERENCES users(id),
    admin_remark TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_requests_requester ON requests(requester_id);

CREATE TABLE IF NOT EXISTS issuances (
    id                INTEGER PRIMARY KEY,
    stock_item_id     INTEGER NOT NULL REFERENCES stock_items(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    unit              TEXT NOT NULL DEFAULT 'pcs',
    recipient_user_id INTEGER REFERENCES users(id),
    recipient_name    TEXT NOT NULL DEFAULT '',
    issued_by         INTEGER NOT NULL REFERENCES users(id),
    purpose           TEXT NOT NULL DEFAULT '',
    remarks           TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'in-use'
                      CHECK (status IN ('in-use', 'completed', 'maintenance', 'repair')),
    request_id        INTEGER REFERENCES requests(id),
    issued_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (recipient_user_id IS NOT NULL OR recipient_name <> '')
);

CREATE INDEX IF NOT EXISTS idx_issuances_item ON issuances(stock_item_id);

CREATE TABLE IF NOT EXISTS photos (
    ref        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS repair_requests (
    id           INTEGER PRIMARY KEY,
    location     TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    priority     TEXT NOT NULL DEFAULT 'medium'
                 CHECK (priority IN ('low', 'medium', 'high', 'urgent')),
    photo_ref    TEXT REFERENCES photos(ref),
    status       TEXT NOT NULL DEFAULT 'pending'
                 CHECK (status IN ('pending', 'approved', 'rejected', 'completed')),
    requester_id INTEGER NOT NULL REFERENCES users(id),
    admin_remark TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS under_repair_items (
    id                INTEGER PRIMARY KEY,
    repair_request_id INTEGER NOT NULL UNIQUE REFERENCES repair_requests(id),
    location          TEXT NOT NULL,
    priority          TEXT NOT NULL,
    photo_ref         TEXT,
    requester_id      INTEGER NOT NULL REFERENCES users(id),
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending', 'in_progress', 'completed', 'cancelled')),
    remarks           TEXT NOT NULL DEFAULT '',
    created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id),
    message    TEXT NOT NULL,
    read       INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);

CREATE TABLE IF NOT EXISTS audit_log (
    id           TEXT PRIMARY KEY,
    actor_id     INTEGER NOT NULL,
    actor_role   TEXT NOT NULL,
    action       TEXT NOT NULL,
    entity_type  TEXT NOT NULL,
    entity_id    INTEGER NOT NULL,
    before_state TEXT NOT NULL DEFAULT '',
    after_state  TEXT NOT NULL DEFAULT '',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
