package postgres

import (
	"context"
	"fmt"
)

// Schema creates the three collections. Lessons have no foreign keys from
// comments or attachments so deleting a lesson never cascades.
const Schema = `
CREATE TABLE IF NOT EXISTS lessons (
	id                  TEXT PRIMARY KEY,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL,
	video_ref           CHAR(11) NOT NULL,
	thumbnail_url       TEXT NOT NULL,
	author_display_name TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS lessons_created_at_idx ON lessons (created_at DESC, id);

CREATE TABLE IF NOT EXISTS comments (
	id                  TEXT PRIMARY KEY,
	lesson_id           TEXT NOT NULL,
	author_id           TEXT NOT NULL,
	author_display_name TEXT NOT NULL,
	author_photo_url    TEXT NOT NULL DEFAULT '',
	content             TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS comments_lesson_idx ON comments (lesson_id, created_at, id);

CREATE TABLE IF NOT EXISTS attachments (
	id           TEXT PRIMARY KEY,
	lesson_id    TEXT NOT NULL,
	display_name TEXT NOT NULL,
	blob_url     TEXT NOT NULL,
	blob_key     TEXT NOT NULL UNIQUE,
	kind         VARCHAR(16) NOT NULL,
	size_bytes   BIGINT NOT NULL DEFAULT 0,
	content_type TEXT NOT NULL DEFAULT '',
	uploaded_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS attachments_lesson_idx ON attachments (lesson_id, uploaded_at DESC, id);
`

// Migrate applies Schema. It is idempotent.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
