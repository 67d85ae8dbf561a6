package classroom

import (
	"context"
)

// BlobStore is the external binary store that attachment bytes are written to.
type BlobStore interface {
	// Put writes data under key and returns a URL the file can be fetched from
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// URL returns a retrievable URL for an existing blob
	URL(ctx context.Context, key string) (string, error)

	// Delete removes the blob stored under key
	Delete(ctx context.Context, key string) error
}

// BlobLister is implemented by blob stores that can enumerate their keys.
// OrphanSweeper requires it.
type BlobLister interface {
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// LessonStore persists lesson records. Implementations assign Lesson.ID on
// Create and return ErrNotFound for missing ids.
type LessonStore interface {
	CreateLesson(ctx context.Context, lesson *Lesson) error
	GetLesson(ctx context.Context, id string) (*Lesson, error)
	// ListLessons returns all lessons ordered by created_at descending
	ListLessons(ctx context.Context) ([]*Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
}

// CommentStore persists comment records.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *Comment) error
	// ListComments returns the comments of a lesson ordered by created_at ascending
	ListComments(ctx context.Context, lessonID string) ([]*Comment, error)
}

// AttachmentStore persists attachment metadata records.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, attachment *Attachment) error
	GetAttachment(ctx context.Context, id string) (*Attachment, error)
	// ListAttachments returns the attachments of a lesson ordered by uploaded_at descending
	ListAttachments(ctx context.Context, lessonID string) ([]*Attachment, error)
}

// Store bundles the three collections; every repo/ backend implements it.
type Store interface {
	LessonStore
	CommentStore
	AttachmentStore
}
