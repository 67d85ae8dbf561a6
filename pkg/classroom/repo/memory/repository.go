package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-classroom/pkg/classroom"
)

// Repository implements classroom.Store using in-memory storage
type Repository struct {
	mu                  sync.RWMutex
	lessons             map[string]*classroom.Lesson
	comments            map[string]*classroom.Comment
	attachments         map[string]*classroom.Attachment
	commentsByLesson    map[string][]string // lesson_id -> []comment_id
	attachmentsByLesson map[string][]string // lesson_id -> []attachment_id
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		lessons:             make(map[string]*classroom.Lesson),
		comments:            make(map[string]*classroom.Comment),
		attachments:         make(map[string]*classroom.Attachment),
		commentsByLesson:    make(map[string][]string),
		attachmentsByLesson: make(map[string][]string),
	}
}

var _ classroom.Store = (*Repository)(nil)

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Lesson operations

func (r *Repository) CreateLesson(ctx context.Context, lesson *classroom.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lesson.ID == "" {
		lesson.ID = newID()
	}
	lessonCopy := *lesson
	r.lessons[lesson.ID] = &lessonCopy
	return nil
}

func (r *Repository) GetLesson(ctx context.Context, id string) (*classroom.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lesson, exists := r.lessons[id]
	if !exists {
		return nil, classroom.ErrNotFound
	}
	lessonCopy := *lesson
	return &lessonCopy, nil
}

func (r *Repository) ListLessons(ctx context.Context) ([]*classroom.Lesson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*classroom.Lesson, 0, len(r.lessons))
	for _, lesson := range r.lessons {
		lessonCopy := *lesson
		result = append(result, &lessonCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteLesson removes only the lesson record; comments and attachments stay.
func (r *Repository) DeleteLesson(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lessons[id]; !exists {
		return classroom.ErrNotFound
	}
	delete(r.lessons, id)
	return nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *classroom.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.ID == "" {
		comment.ID = newID()
	}
	commentCopy := *comment
	r.comments[comment.ID] = &commentCopy
	r.commentsByLesson[comment.LessonID] = append(r.commentsByLesson[comment.LessonID], comment.ID)
	return nil
}

func (r *Repository) ListComments(ctx context.Context, lessonID string) ([]*classroom.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.commentsByLesson[lessonID]
	result := make([]*classroom.Comment, 0, len(ids))
	for _, id := range ids {
		commentCopy := *r.comments[id]
		result = append(result, &commentCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, attachment *classroom.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if attachment.ID == "" {
		attachment.ID = newID()
	}
	attachmentCopy := *attachment
	r.attachments[attachment.ID] = &attachmentCopy
	r.attachmentsByLesson[attachment.LessonID] = append(r.attachmentsByLesson[attachment.LessonID], attachment.ID)
	return nil
}

func (r *Repository) GetAttachment(ctx context.Context, id string) (*classroom.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attachment, exists := r.attachments[id]
	if !exists {
		return nil, classroom.ErrNotFound
	}
	attachmentCopy := *attachment
	return &attachmentCopy, nil
}

func (r *Repository) ListAttachments(ctx context.Context, lessonID string) ([]*classroom.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.attachmentsByLesson[lessonID]
	result := make([]*classroom.Attachment, 0, len(ids))
	for _, id := range ids {
		attachmentCopy := *r.attachments[id]
		result = append(result, &attachmentCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UploadedAt.After(result[j].UploadedAt)
	})
	return result, nil
}
