package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the full DDL for the directory. Statements are idempotent so
// startup can apply them unconditionally.
const Schema = `
CREATE TABLE IF NOT EXISTS cities (
	id            BIGSERIAL PRIMARY KEY,
	name_ka       TEXT        NOT NULL,
	name_en       TEXT        NOT NULL,
	location      TEXT        NOT NULL DEFAULT '',
	created_date  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS persons (
	id            BIGSERIAL PRIMARY KEY,
	first_name    TEXT        NOT NULL,
	last_name     TEXT        NOT NULL,
	personal_id   TEXT        NOT NULL,
	birth_date    TIMESTAMPTZ NOT NULL,
	city_id       BIGINT      NOT NULL REFERENCES cities (id),
	gender        TEXT        NOT NULL,
	image         TEXT        NOT NULL DEFAULT '',
	created_date  TIMESTAMPTZ NOT NULL,
	updated_date  TIMESTAMPTZ,
	CONSTRAINT persons_personal_id_unique UNIQUE (personal_id)
);

CREATE TABLE IF NOT EXISTS phone_numbers (
	id            BIGSERIAL PRIMARY KEY,
	person_id     BIGINT      NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
	number        TEXT        NOT NULL,
	type          TEXT        NOT NULL,
	created_date  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS phone_numbers_person_id_idx ON phone_numbers (person_id);

CREATE TABLE IF NOT EXISTS person_relations (
	person_id          BIGINT      NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
	related_person_id  BIGINT      NOT NULL REFERENCES persons (id) ON DELETE CASCADE,
	type               TEXT        NOT NULL,
	created_date       TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (person_id, related_person_id),
	CONSTRAINT person_relations_no_self CHECK (person_id <> related_person_id)
);

CREATE INDEX IF NOT EXISTS person_relations_related_idx ON person_relations (related_person_id);
`

// EnsureSchema applies the DDL.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
