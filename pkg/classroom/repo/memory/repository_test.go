package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/repo/memory"
)

func TestMemoryRepository_LessonOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("CreateAssignsID", func(t *testing.T) {
		lesson := &classroom.Lesson{Title: "Fractions", CreatedAt: base}
		require.NoError(t, repo.CreateLesson(ctx, lesson))
		assert.NotEmpty(t, lesson.ID)

		got, err := repo.GetLesson(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, "Fractions", got.Title)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		lesson := &classroom.Lesson{Title: "Original", CreatedAt: base}
		require.NoError(t, repo.CreateLesson(ctx, lesson))

		got, err := repo.GetLesson(ctx, lesson.ID)
		require.NoError(t, err)
		got.Title = "Changed"

		again, err := repo.GetLesson(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", again.Title)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := memory.New()
		for i, title := range []string{"old", "new", "mid"} {
			offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
			require.NoError(t, repo.CreateLesson(ctx, &classroom.Lesson{Title: title, CreatedAt: base.Add(offsets[i])}))
		}
		lessons, err := repo.ListLessons(ctx)
		require.NoError(t, err)
		require.Len(t, lessons, 3)
		assert.Equal(t, "new", lessons[0].Title)
		assert.Equal(t, "mid", lessons[1].Title)
		assert.Equal(t, "old", lessons[2].Title)
	})

	t.Run("MissingLesson", func(t *testing.T) {
		_, err := repo.GetLesson(ctx, "nope")
		assert.ErrorIs(t, err, classroom.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteLesson(ctx, "nope"), classroom.ErrNotFound)
	})

	t.Run("DeleteKeepsChildren", func(t *testing.T) {
		lesson := &classroom.Lesson{Title: "Doomed", CreatedAt: base}
		require.NoError(t, repo.CreateLesson(ctx, lesson))
		require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{LessonID: lesson.ID, Content: "hi", CreatedAt: base}))
		require.NoError(t, repo.CreateAttachment(ctx, &classroom.Attachment{LessonID: lesson.ID, BlobKey: "k", UploadedAt: base}))

		require.NoError(t, repo.DeleteLesson(ctx, lesson.ID))
		_, err := repo.GetLesson(ctx, lesson.ID)
		assert.ErrorIs(t, err, classroom.ErrNotFound)

		comments, err := repo.ListComments(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
		attachments, err := repo.ListAttachments(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Len(t, attachments, 1)
	})
}

func TestMemoryRepository_CommentOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{LessonID: "l1", Content: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{LessonID: "l1", Content: "first", CreatedAt: base}))
	require.NoError(t, repo.CreateComment(ctx, &classroom.Comment{LessonID: "l2", Content: "other", CreatedAt: base}))

	comments, err := repo.ListComments(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.NotEqual(t, comments[0].ID, comments[1].ID)

	empty, err := repo.ListComments(ctx, "l3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryRepository_AttachmentOperations(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &classroom.Attachment{LessonID: "l1", DisplayName: "a.pdf", BlobKey: "attachments/l1/1-a.pdf", UploadedAt: base}
	newer := &classroom.Attachment{LessonID: "l1", DisplayName: "b.png", BlobKey: "attachments/l1/2-b.png", UploadedAt: base.Add(time.Second)}
	require.NoError(t, repo.CreateAttachment(ctx, older))
	require.NoError(t, repo.CreateAttachment(ctx, newer))

	list, err := repo.ListAttachments(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b.png", list[0].DisplayName)
	assert.Equal(t, "a.pdf", list[1].DisplayName)

	got, err := repo.GetAttachment(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.BlobKey, got.BlobKey)

	_, err = repo.GetAttachment(ctx, "missing")
	assert.ErrorIs(t, err, classroom.ErrNotFound)
}
