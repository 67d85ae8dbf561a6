package classroom

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// service implements the Service interface
type service struct {
	lessonStore     LessonStore
	commentStore    CommentStore
	attachmentStore AttachmentStore
	blobs           BlobStore
	log             *zap.Logger
	now             func() time.Time
	maxFileSize     int64
	maxConcurrent   int
	defaultAuthor   string

	lessons     *ContentRepository
	comments    *CommentLedger
	attachments *AttachmentRepository
	pipeline    *AttachmentPipeline
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithLessonStore sets the store for lesson records
func WithLessonStore(store LessonStore) Option {
	return func(s *service) {
		s.lessonStore = store
	}
}

// WithCommentStore sets the store for comment records
func WithCommentStore(store CommentStore) Option {
	return func(s *service) {
		s.commentStore = store
	}
}

// WithAttachmentStore sets the store for attachment records
func WithAttachmentStore(store AttachmentStore) Option {
	return func(s *service) {
		s.attachmentStore = store
	}
}

// WithStore uses one backend for all three collections
func WithStore(store Store) Option {
	return func(s *service) {
		s.lessonStore = store
		s.commentStore = store
		s.attachmentStore = store
	}
}

// WithBlobStore sets the blob store attachments are written to
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobs = store
	}
}

// WithLogger sets the structured logger; nil keeps the no-op default
func WithLogger(log *zap.Logger) Option {
	return func(s *service) {
		s.log = log
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// WithMaxFileSize sets the per-file upload cap in bytes
func WithMaxFileSize(n int64) Option {
	return func(s *service) {
		s.maxFileSize = n
	}
}

// WithMaxConcurrentUploads bounds the files of a batch in flight at once
func WithMaxConcurrentUploads(n int) Option {
	return func(s *service) {
		s.maxConcurrent = n
	}
}

// WithDefaultAuthor sets the author shown on lessons created without one
func WithDefaultAuthor(name string) Option {
	return func(s *service) {
		s.defaultAuthor = name
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		log:           zap.NewNop(),
		now:           time.Now,
		maxFileSize:   DefaultMaxFileSize,
		defaultAuthor: DefaultAuthor,
	}

	for _, option := range options {
		option(s)
	}

	switch {
	case s.lessonStore == nil:
		return nil, errors.New("lesson store is required")
	case s.commentStore == nil:
		return nil, errors.New("comment store is required")
	case s.attachmentStore == nil:
		return nil, errors.New("attachment store is required")
	case s.blobs == nil:
		return nil, errors.New("blob store is required")
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	s.lessons = NewContentRepository(s.lessonStore, s.log.Named("lessons"), s.now, s.defaultAuthor)
	s.comments = NewCommentLedger(s.commentStore, s.lessons, s.log.Named("comments"), s.now)
	s.attachments = NewAttachmentRepository(s.attachmentStore, s.lessons)
	s.pipeline = NewAttachmentPipeline(s.lessons, s.attachments, s.blobs, PipelineConfig{
		MaxFileSize:   s.maxFileSize,
		MaxConcurrent: s.maxConcurrent,
		Now:           s.now,
		Log:           s.log.Named("pipeline"),
	})
	return s, nil
}

// DefaultAuthor is the lesson author used when neither the request nor the
// configuration names one.
const DefaultAuthor = "Mr. Johnson"

// Lesson operations

func (s *service) ListLessons(ctx context.Context) ([]*Lesson, error) {
	return s.lessons.List(ctx)
}

func (s *service) GetLesson(ctx context.Context, id string) (*Lesson, error) {
	return s.lessons.Get(ctx, id)
}

func (s *service) CreateLesson(ctx context.Context, req CreateLessonRequest) (*Lesson, error) {
	return s.lessons.Create(ctx, req)
}

func (s *service) DeleteLesson(ctx context.Context, id string) error {
	if err := s.lessons.Delete(ctx, id); err != nil {
		return &LessonError{LessonID: id, Op: "delete", Err: err}
	}
	return nil
}

// Comment operations

func (s *service) ListComments(ctx context.Context, lessonID string) ([]*Comment, error) {
	return s.comments.List(ctx, lessonID)
}

func (s *service) AppendComment(ctx context.Context, lessonID string, author Principal, content string) (*Comment, error) {
	return s.comments.Append(ctx, lessonID, author, content)
}

// Attachment operations

func (s *service) ListAttachments(ctx context.Context, lessonID string) ([]*Attachment, error) {
	return s.attachments.List(ctx, lessonID)
}

func (s *service) UploadAttachments(ctx context.Context, lessonID string, files []UploadFile) (*UploadOutcome, error) {
	return s.pipeline.Upload(ctx, lessonID, files)
}

func (s *service) AttachmentURL(ctx context.Context, attachmentID string) (string, error) {
	a, err := s.attachments.Get(ctx, attachmentID)
	if err != nil {
		return "", err
	}
	url, err := s.blobs.URL(ctx, a.BlobKey)
	if err != nil {
		return "", fmt.Errorf("blob url for %s: %w", a.BlobKey, err)
	}
	return url, nil
}
