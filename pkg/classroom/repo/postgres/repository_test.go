package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/repo/postgres"
)

// newTestRepo connects to TEST_DATABASE_URL, applies the schema and empties
// the tables. Tests are skipped when the variable is unset.
func newTestRepo(t *testing.T) *postgres.Repository {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx), "Failed to ping test database")

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE lessons, comments, attachments")
	require.NoError(t, err)

	return postgres.NewWithPool(pool)
}

func TestPostgresRepository_Lessons(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	first := &classroom.Lesson{
		Title: "Fractions", Description: "Halves", VideoRef: "dQw4w9WgXcQ",
		ThumbnailURL: "t", AuthorDisplayName: "A", CreatedAt: base, UpdatedAt: base,
	}
	second := &classroom.Lesson{
		Title: "Decimals", Description: "Tenths", VideoRef: "dQw4w9WgXcQ",
		ThumbnailURL: "t", AuthorDisplayName: "A", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
	}
	require.NoError(t, repo.CreateLesson(ctx, first))
	require.NoError(t, repo.CreateLesson(ctx, second))
	assert.NotEmpty(t, first.ID)

	got, err := repo.GetLesson(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fractions", got.Title)
	assert.True(t, base.Equal(got.CreatedAt))

	list, err := repo.ListLessons(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	require.NoError(t, repo.DeleteLesson(ctx, first.ID))
	_, err = repo.GetLesson(ctx, first.ID)
	assert.ErrorIs(t, err, classroom.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteLesson(ctx, first.ID), classroom.ErrNotFound)
}

func TestPostgresRepository_CommentsAndAttachments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{
		LessonID: "l1", AuthorID: "u1", AuthorDisplayName: "Ann", Content: "later", CreatedAt: base.Add(time.Minute),
	}))
	require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{
		LessonID: "l1", AuthorID: "u2", AuthorDisplayName: "Bo", Content: "earlier", CreatedAt: base,
	}))
	comments, err := repo.ListComments(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "earlier", comments[0].Content)

	a := &classroom.Attachment{
		LessonID: "l1", DisplayName: "notes.pdf", BlobURL: "u", BlobKey: "attachments/l1/1-notes.pdf",
		Kind: classroom.KindPDF, SizeBytes: 10, ContentType: "application/pdf", UploadedAt: base,
	}
	require.NoError(t, repo.CreateAttachment(ctx, a))
	got, err := repo.GetAttachment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, classroom.KindPDF, got.Kind)

	list, err := repo.ListAttachments(ctx, "l1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.GetAttachment(ctx, "missing")
	assert.ErrorIs(t, err, classroom.ErrNotFound)
}
