package classroom_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tendant/simple-classroom/pkg/classroom"
	"github.com/tendant/simple-classroom/pkg/classroom/repo/memory"
)

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// stepClock returns testEpoch and advances by step on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{now: testEpoch, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// mockBlobStore is a testify mock of classroom.BlobStore.
type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// faultyStore wraps the memory repository and fails selected calls.
type faultyStore struct {
	*memory.Repository
	mu                sync.Mutex
	failAttachmentFor map[string]error // display name -> error
	failGetLesson     error
	failListLessons   error
	failListComments  error
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Repository: memory.New(), failAttachmentFor: map[string]error{}}
}

func (s *faultyStore) CreateAttachment(ctx context.Context, a *classroom.Attachment) error {
	s.mu.Lock()
	err := s.failAttachmentFor[a.DisplayName]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Repository.CreateAttachment(ctx, a)
}

func (s *faultyStore) GetLesson(ctx context.Context, id string) (*classroom.Lesson, error) {
	if s.failGetLesson != nil {
		return nil, s.failGetLesson
	}
	return s.Repository.GetLesson(ctx, id)
}

func (s *faultyStore) ListLessons(ctx context.Context) ([]*classroom.Lesson, error) {
	if s.failListLessons != nil {
		return nil, s.failListLessons
	}
	return s.Repository.ListLessons(ctx)
}

func (s *faultyStore) ListComments(ctx context.Context, lessonID string) ([]*classroom.Comment, error) {
	if s.failListComments != nil {
		return nil, s.failListComments
	}
	return s.Repository.ListComments(ctx, lessonID)
}

func validLessonRequest(title string) classroom.CreateLessonRequest {
	return classroom.CreateLessonRequest{
		Title:       title,
		Description: "An introduction",
		VideoURL:    "https://youtu.be/dQw4w9WgXcQ",
	}
}
