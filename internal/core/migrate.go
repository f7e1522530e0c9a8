package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            SERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('manager', 'reception')),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    last_login    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    user_id    INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    csrf_token TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at);

CREATE TABLE IF NOT EXISTS staff (
    id         SERIAL PRIMARY KEY,
    name       TEXT NOT NULL,
    active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS services (
    id               SERIAL PRIMARY KEY,
    name             TEXT NOT NULL,
    duration_minutes INT NOT NULL DEFAULT 60 CHECK (duration_minutes > 0),
    price            BIGINT NOT NULL CHECK (price >= 0),
    active           BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE UNIQUE INDEX IF NOT EXISTS staff_name_key ON staff (lower(name));
CREATE UNIQUE INDEX IF NOT EXISTS services_name_key ON services (lower(name));

CREATE TABLE IF NOT EXISTS roster_days (
    day DATE PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS roster_entries (
    day          DATE NOT NULL REFERENCES roster_days(day) ON DELETE CASCADE,
    position     INT NOT NULL CHECK (position > 0),
    staff_id     INT NOT NULL REFERENCES staff(id),
    status       TEXT NOT NULL,
    served_count INT NOT NULL DEFAULT 0,
    PRIMARY KEY (day, position),
    UNIQUE (day, staff_id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id             UUID PRIMARY KEY,
    staff_id       INT NOT NULL REFERENCES staff(id),
    service_id     INT NOT NULL REFERENCES services(id),
    amount         BIGINT NOT NULL CHECK (amount >= 0),
    tip            BIGINT NOT NULL DEFAULT 0 CHECK (tip >= 0),
    payment_method TEXT NOT NULL,
    note           TEXT NOT NULL DEFAULT '',
    created_by     INT REFERENCES users(id) ON DELETE SET NULL,
    created_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS transactions_created_at_idx ON transactions (created_at);

CREATE TABLE IF NOT EXISTS expenses (
    id          UUID PRIMARY KEY,
    category    TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    amount      BIGINT NOT NULL CHECK (amount >= 0),
    spent_on    DATE NOT NULL,
    created_by  INT REFERENCES users(id) ON DELETE SET NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS expenses_spent_on_idx ON expenses (spent_on);
`

// Migrate creates any missing tables. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
