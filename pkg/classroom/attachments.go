package classroom

import (
	"context"
	"sort"
	"strings"
)

// AttachmentRepository owns attachment metadata records. Records are only
// created by AttachmentPipeline after their blob was written.
type AttachmentRepository struct {
	store   AttachmentStore
	lessons *ContentRepository
}

// NewAttachmentRepository wraps an AttachmentStore.
func NewAttachmentRepository(store AttachmentStore, lessons *ContentRepository) *AttachmentRepository {
	return &AttachmentRepository{store: store, lessons: lessons}
}

// List returns the attachments of a lesson, most recently uploaded first.
func (r *AttachmentRepository) List(ctx context.Context, lessonID string) ([]*Attachment, error) {
	if err := r.lessons.Exists(ctx, lessonID); err != nil {
		return nil, err
	}
	return r.listRecords(ctx, lessonID)
}

// listRecords skips the lesson check so records of deleted lessons stay
// reachable for the sweeper.
func (r *AttachmentRepository) listRecords(ctx context.Context, lessonID string) ([]*Attachment, error) {
	attachments, err := r.store.ListAttachments(ctx, lessonID)
	if err != nil {
		return nil, storeErr("attachments", "list", err)
	}
	sort.SliceStable(attachments, func(i, j int) bool {
		a, b := attachments[i], attachments[j]
		if !a.UploadedAt.Equal(b.UploadedAt) {
			return a.UploadedAt.After(b.UploadedAt)
		}
		return a.ID < b.ID
	})
	return attachments, nil
}

// Get returns a single attachment record or ErrNotFound.
func (r *AttachmentRepository) Get(ctx context.Context, id string) (*Attachment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	a, err := r.store.GetAttachment(ctx, id)
	if err != nil {
		return nil, storeErr("attachments", "get", err)
	}
	return a, nil
}

// Create persists an attachment record. Only required fields are checked.
func (r *AttachmentRepository) Create(ctx context.Context, a *Attachment) (*Attachment, error) {
	switch {
	case a.LessonID == "":
		return nil, invalid("lesson_id", "required")
	case a.DisplayName == "":
		return nil, invalid("display_name", "required")
	case a.BlobURL == "":
		return nil, invalid("blob_url", "required")
	case a.BlobKey == "":
		return nil, invalid("blob_key", "required")
	case !a.Kind.Valid():
		return nil, invalid("kind", string(a.Kind))
	case a.UploadedAt.IsZero():
		return nil, invalid("uploaded_at", "required")
	}
	if err := r.store.CreateAttachment(ctx, a); err != nil {
		return nil, storeErr("attachments", "create", err)
	}
	return a, nil
}
