package classroom

import (
	"context"
)

// Service defines the main interface for the classroom library
type Service interface {
	// Lesson operations
	ListLessons(ctx context.Context) ([]*Lesson, error)
	GetLesson(ctx context.Context, id string) (*Lesson, error)
	CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error)
	DeleteLesson(ctx context.Context, id string) error

	// Comment operations
	ListComments(ctx context.Context, lessonID string) ([]*Comment, error)
	AppendComment(ctx context.Context, lessonID string, author Principal, content string) (*Comment, error)

	// Attachment operations
	ListAttachments(ctx context.Context, lessonID string) ([]*Attachment, error)
	UploadAttachments(ctx context.Context, lessonID string, files []UploadFile) (*UploadOutcome, error)
	// AttachmentURL returns a fresh retrievable URL for an attachment's blob
	AttachmentURL(ctx context.Context, attachmentID string) (string, error)
}
