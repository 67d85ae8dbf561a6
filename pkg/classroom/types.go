package classroom

import (
	"fmt"
	"time"
)

// AttachmentKind classifies an attachment by its filename extension.
type AttachmentKind string

// Attachment kinds (closed set).
const (
	KindPDF      AttachmentKind = "pdf"
	KindImage    AttachmentKind = "image"
	KindDocument AttachmentKind = "document"
)

// Valid reports whether k is one of the known kinds.
func (k AttachmentKind) Valid() bool {
	switch k {
	case KindPDF, KindImage, KindDocument:
		return true
	}
	return false
}

// ParseAttachmentKind converts a stored string back into a kind.
func ParseAttachmentKind(s string) (AttachmentKind, error) {
	k := AttachmentKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown attachment kind %q", s)
	}
	return k, nil
}

// FailureKind identifies why a single file of an upload batch failed.
type FailureKind uint8

// Per-file failure kinds (closed set).
const (
	FailureTooLarge FailureKind = iota + 1
	FailureBlobWrite
	FailureMetadataWrite
)

func (k FailureKind) String() string {
	switch k {
	case FailureTooLarge:
		return "too_large"
	case FailureBlobWrite:
		return "blob_write_failed"
	case FailureMetadataWrite:
		return "metadata_write_failed"
	default:
		return fmt.Sprintf("failure(%d)", uint8(k))
	}
}

// Lesson is a published unit of video content.
//
// VideoRef always holds the extracted 11-character video identifier, never
// the URL the author submitted.
type Lesson struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	VideoRef          string    `json:"video_ref"`
	ThumbnailURL      string    `json:"thumbnail_url"`
	AuthorDisplayName string    `json:"author_display_name"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Comment is one append-only discussion entry on a lesson.
type Comment struct {
	ID                string    `json:"id"`
	LessonID          string    `json:"lesson_id"`
	AuthorID          string    `json:"author_id"`
	AuthorDisplayName string    `json:"author_display_name"`
	AuthorPhotoURL    string    `json:"author_photo_url,omitempty"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
}

// Attachment is the metadata record for a file stored in the blob store.
type Attachment struct {
	ID          string         `json:"id"`
	LessonID    string         `json:"lesson_id"`
	DisplayName string         `json:"display_name"`
	BlobURL     string         `json:"blob_url"`
	BlobKey     string         `json:"blob_key"`
	Kind        AttachmentKind `json:"kind"`
	SizeBytes   int64          `json:"size_bytes"`
	ContentType string         `json:"content_type,omitempty"`
	UploadedAt  time.Time      `json:"uploaded_at"`
}

// Principal is the authenticated user as supplied by the identity provider.
type Principal struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
}

// UploadFile is one file of an upload batch.
//
// Size is the size declared by the caller. The larger of Size and len(Data)
// is checked against the size cap.
type UploadFile struct {
	Name string
	Data []byte
	Size int64
}

func (f UploadFile) size() int64 {
	if n := int64(len(f.Data)); n > f.Size {
		return n
	}
	return f.Size
}

// FileOutcome is the terminal state of one file in an upload batch. Exactly
// one of Attachment and Failure is set.
type FileOutcome struct {
	Name       string       `json:"name"`
	Attachment *Attachment  `json:"attachment,omitempty"`
	Failure    *FileFailure `json:"failure,omitempty"`
}

// Succeeded reports whether the file produced an attachment record.
func (o FileOutcome) Succeeded() bool {
	return o.Attachment != nil
}

// UploadOutcome holds one FileOutcome per input file, in input order.
type UploadOutcome struct {
	LessonID string        `json:"lesson_id"`
	Files    []FileOutcome `json:"files"`
}

// Attachments returns the records created by the batch, in input order.
func (o *UploadOutcome) Attachments() []Attachment {
	var out []Attachment
	for _, f := range o.Files {
		if f.Attachment != nil {
			out = append(out, *f.Attachment)
		}
	}
	return out
}

// Failures returns the outcomes of the files that failed.
func (o *UploadOutcome) Failures() []FileOutcome {
	var out []FileOutcome
	for _, f := range o.Files {
		if f.Failure != nil {
			out = append(out, f)
		}
	}
	return out
}

// AllSucceeded reports whether every file in the batch was stored.
func (o *UploadOutcome) AllSucceeded() bool {
	return len(o.Failures()) == 0
}

// CreateLessonRequest contains the fields an admin submits for a new lesson.
type CreateLessonRequest struct {
	Title             string
	Description       string
	VideoURL          string
	ThumbnailURL      string
	AuthorDisplayName string
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Key       string
	Size      int64
	UpdatedAt time.Time
}
