package classroom

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContentRepository owns lesson records and their validation.
type ContentRepository struct {
	store         LessonStore
	log           *zap.Logger
	now           func() time.Time
	defaultAuthor string
}

// NewContentRepository wraps a LessonStore.
func NewContentRepository(store LessonStore, log *zap.Logger, now func() time.Time, defaultAuthor string) *ContentRepository {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ContentRepository{store: store, log: log, now: now, defaultAuthor: defaultAuthor}
}

// List returns all lessons, most recent first. Lessons created at the same
// instant are ordered by id ascending.
func (r *ContentRepository) List(ctx context.Context) ([]*Lesson, error) {
	lessons, err := r.store.ListLessons(ctx)
	if err != nil {
		return nil, storeErr("lessons", "list", err)
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return lessons, nil
}

// Get returns the lesson with the given id or ErrNotFound.
func (r *ContentRepository) Get(ctx context.Context, id string) (*Lesson, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	lesson, err := r.store.GetLesson(ctx, id)
	if err != nil {
		return nil, storeErr("lessons", "get", err)
	}
	return lesson, nil
}

// Exists checks that a lesson is present, returning ErrNotFound when not.
func (r *ContentRepository) Exists(ctx context.Context, id string) error {
	_, err := r.Get(ctx, id)
	return err
}

// Create validates the request and stores a new lesson.
func (r *ContentRepository) Create(ctx context.Context, req CreateLessonRequest) (*Lesson, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, invalid("title", "required")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, invalid("description", "required")
	}
	ref, ok := ExtractVideoRef(req.VideoURL)
	if !ok {
		return nil, invalid("video_ref", fmt.Sprintf("no 11-character video identifier in %q", req.VideoURL))
	}

	thumbnail := strings.TrimSpace(req.ThumbnailURL)
	if thumbnail == "" {
		thumbnail = DefaultThumbnailURL(ref)
	}
	author := strings.TrimSpace(req.AuthorDisplayName)
	if author == "" {
		author = r.defaultAuthor
	}

	now := r.now().UTC()
	lesson := &Lesson{
		Title:             title,
		Description:       description,
		VideoRef:          ref,
		ThumbnailURL:      thumbnail,
		AuthorDisplayName: author,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := r.store.CreateLesson(ctx, lesson); err != nil {
		return nil, storeErr("lessons", "create", err)
	}

	r.log.Info("lesson created", zap.String("lesson_id", lesson.ID), zap.String("video_ref", ref))
	return lesson, nil
}

// Delete removes a lesson. Its comments and attachments are left in place.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if err := r.Exists(ctx, id); err != nil {
		return err
	}
	if err := r.store.DeleteLesson(ctx, id); err != nil {
		return storeErr("lessons", "delete", err)
	}
	r.log.Info("lesson deleted", zap.String("lesson_id", id))
	return nil
}
