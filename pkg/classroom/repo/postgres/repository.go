package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-classroom/pkg/classroom"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements classroom.Store using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ classroom.Store = (*Repository)(nil)

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return classroom.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry on %s: %w", pgErr.ConstraintName, err)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing: %w", pgErr.ColumnName, err)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required: %w", err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Lesson operations

func (r *Repository) CreateLesson(ctx context.Context, lesson *classroom.Lesson) error {
	query := `
		INSERT INTO lessons (
			id, title, description, video_ref, thumbnail_url,
			author_display_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	id := lesson.ID
	if id == "" {
		id = newID()
	}
	_, err := r.db.Exec(ctx, query,
		id, lesson.Title, lesson.Description, lesson.VideoRef, lesson.ThumbnailURL,
		lesson.AuthorDisplayName, lesson.CreatedAt, lesson.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create lesson", err)
	}
	lesson.ID = id
	return nil
}

const lessonColumns = `id, title, description, video_ref, thumbnail_url,
	author_display_name, created_at, updated_at`

func scanLesson(row pgx.Row) (*classroom.Lesson, error) {
	var l classroom.Lesson
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.VideoRef, &l.ThumbnailURL,
		&l.AuthorDisplayName, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	return &l, nil
}

func (r *Repository) GetLesson(ctx context.Context, id string) (*classroom.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get lesson", err)
	}
	return lesson, nil
}

func (r *Repository) ListLessons(ctx context.Context) ([]*classroom.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, r.handlePostgresError("list lessons", err)
	}
	defer rows.Close()

	var lessons []*classroom.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan lesson", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list lessons", err)
	}
	return lessons, nil
}

func (r *Repository) DeleteLesson(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete lesson", err)
	}
	if tag.RowsAffected() == 0 {
		return classroom.ErrNotFound
	}
	return nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *classroom.Comment) error {
	query := `
		INSERT INTO comments (
			id, lesson_id, author_id, author_display_name, author_photo_url, content, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	id := comment.ID
	if id == "" {
		id = newID()
	}
	_, err := r.db.Exec(ctx, query,
		id, comment.LessonID, comment.AuthorID, comment.AuthorDisplayName,
		comment.AuthorPhotoURL, comment.Content, comment.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create comment", err)
	}
	comment.ID = id
	return nil
}

func (r *Repository) ListComments(ctx context.Context, lessonID string) ([]*classroom.Comment, error) {
	query := `
		SELECT id, lesson_id, author_id, author_display_name, author_photo_url, content, created_at
		FROM comments WHERE lesson_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, lessonID)
	if err != nil {
		return nil, r.handlePostgresError("list comments", err)
	}
	defer rows.Close()

	var comments []*classroom.Comment
	for rows.Next() {
		var c classroom.Comment
		if err := rows.Scan(&c.ID, &c.LessonID, &c.AuthorID, &c.AuthorDisplayName,
			&c.AuthorPhotoURL, &c.Content, &c.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan comment", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list comments", err)
	}
	return comments, nil
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, a *classroom.Attachment) error {
	query := `
		INSERT INTO attachments (
			id, lesson_id, display_name, blob_url, blob_key, kind,
			size_bytes, content_type, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	id := a.ID
	if id == "" {
		id = newID()
	}
	_, err := r.db.Exec(ctx, query,
		id, a.LessonID, a.DisplayName, a.BlobURL, a.BlobKey, string(a.Kind),
		a.SizeBytes, a.ContentType, a.UploadedAt)
	if err != nil {
		return r.handlePostgresError("create attachment", err)
	}
	a.ID = id
	return nil
}

const attachmentColumns = `id, lesson_id, display_name, blob_url, blob_key, kind,
	size_bytes, content_type, uploaded_at`

func scanAttachment(row pgx.Row) (*classroom.Attachment, error) {
	var (
		a    classroom.Attachment
		kind string
	)
	err := row.Scan(&a.ID, &a.LessonID, &a.DisplayName, &a.BlobURL, &a.BlobKey, &kind,
		&a.SizeBytes, &a.ContentType, &a.UploadedAt)
	if err != nil {
		return nil, err
	}
	if a.Kind, err = classroom.ParseAttachmentKind(kind); err != nil {
		return nil, err
	}
	a.UploadedAt = a.UploadedAt.UTC()
	return &a, nil
}

func (r *Repository) GetAttachment(ctx context.Context, id string) (*classroom.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`

	a, err := scanAttachment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get attachment", err)
	}
	return a, nil
}

func (r *Repository) ListAttachments(ctx context.Context, lessonID string) ([]*classroom.Attachment, error) {
	query := `SELECT ` + attachmentColumns + `
		FROM attachments WHERE lesson_id = $1 ORDER BY uploaded_at DESC, id`

	rows, err := r.db.Query(ctx, query, lessonID)
	if err != nil {
		return nil, r.handlePostgresError("list attachments", err)
	}
	defer rows.Close()

	var attachments []*classroom.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan attachment", err)
		}
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list attachments", err)
	}
	return attachments, nil
}
