package classroom_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/repo/memory"
)

func TestContentRepository_Create(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := classroom.NewContentRepository(store, nil, fixedClock(testEpoch), "Mr. Johnson")

	t.Run("Defaults", func(t *testing.T) {
		lesson, err := repo.Create(ctx, validLessonRequest("Fractions"))
		require.NoError(t, err)
		assert.NotEmpty(t, lesson.ID)
		assert.Equal(t, "dQw4w9WgXcQ", lesson.VideoRef)
		assert.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", lesson.ThumbnailURL)
		assert.Equal(t, "Mr. Johnson", lesson.AuthorDisplayName)
		assert.True(t, testEpoch.Equal(lesson.CreatedAt))
		assert.Equal(t, lesson.CreatedAt, lesson.UpdatedAt)

		stored, err := repo.Get(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, lesson, stored)
	})

	t.Run("ExplicitThumbnailAndAuthor", func(t *testing.T) {
		req := validLessonRequest("Decimals")
		req.ThumbnailURL = "https://example.com/thumb.png"
		req.AuthorDisplayName = "Ms. Rivera"
		lesson, err := repo.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/thumb.png", lesson.ThumbnailURL)
		assert.Equal(t, "Ms. Rivera", lesson.AuthorDisplayName)
	})

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name  string
			mut   func(*classroom.CreateLessonRequest)
			field string
		}{
			{"blank title", func(r *classroom.CreateLessonRequest) { r.Title = "   " }, "title"},
			{"blank description", func(r *classroom.CreateLessonRequest) { r.Description = "" }, "description"},
			{"bad video url", func(r *classroom.CreateLessonRequest) { r.VideoURL = "https://example.com/video" }, "video_ref"},
			{"short video id", func(r *classroom.CreateLessonRequest) { r.VideoURL = "https://youtu.be/abc" }, "video_ref"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				before, err := store.ListLessons(ctx)
				require.NoError(t, err)

				req := validLessonRequest("Invalid")
				tt.mut(&req)
				_, err = repo.Create(ctx, req)
				require.Error(t, err)
				assert.ErrorIs(t, err, classroom.ErrValidation)

				var verr *classroom.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.field, verr.Field)

				after, err := store.ListLessons(ctx)
				require.NoError(t, err)
				assert.Len(t, after, len(before), "invalid lesson must not be persisted")
			})
		}
	})
}

func TestContentRepository_ListOrdering(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repo := classroom.NewContentRepository(store, nil, nil, "")

	same := testEpoch.Add(time.Hour)
	for _, l := range []*classroom.Lesson{
		{ID: "b", Title: "tie-b", CreatedAt: same},
		{ID: "old", Title: "old", CreatedAt: testEpoch},
		{ID: "a", Title: "tie-a", CreatedAt: same},
		{ID: "new", Title: "new", CreatedAt: testEpoch.Add(2 * time.Hour)},
	} {
		require.NoError(t, store.CreateLesson(ctx, l))
	}

	lessons, err := repo.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	assert.Equal(t, []string{"new", "a", "b", "old"}, ids)
}

func TestContentRepository_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := classroom.NewContentRepository(memory.New(), nil, nil, "")

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, classroom.ErrNotFound)
	_, err = repo.Get(ctx, "")
	assert.ErrorIs(t, err, classroom.ErrNotFound)

	lesson, err := repo.Create(ctx, validLessonRequest("To delete"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, lesson.ID))
	_, err = repo.Get(ctx, lesson.ID)
	assert.ErrorIs(t, err, classroom.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, lesson.ID), classroom.ErrNotFound)
}

func TestContentRepository_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newFaultyStore()
	store.failListLessons = errors.New("connection refused")
	store.failGetLesson = errors.New("connection refused")
	repo := classroom.NewContentRepository(store, nil, nil, "")

	_, err := repo.List(ctx)
	assert.ErrorIs(t, err, classroom.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, classroom.ErrNotFound)

	var serr *classroom.StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "lessons", serr.Collection)
	assert.Equal(t, "list", serr.Op)

	_, err = repo.Get(ctx, "x")
	assert.ErrorIs(t, err, classroom.ErrStoreUnavailable)
}
