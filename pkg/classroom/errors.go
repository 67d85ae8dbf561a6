package classroom

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates a lesson, comment or attachment does not exist
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates missing or malformed input
	ErrValidation = errors.New("validation failed")

	// ErrTooLarge indicates a file exceeds the configured size cap
	ErrTooLarge = errors.New("file too large")

	// ErrBlobWriteFailed indicates the blob store rejected or lost a write
	ErrBlobWriteFailed = errors.New("blob write failed")

	// ErrMetadataWriteFailed indicates an attachment record could not be stored
	ErrMetadataWriteFailed = errors.New("metadata write failed")

	// ErrStoreUnavailable indicates a transient document store fault. Callers
	// may retry; the library never does.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError names the input field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StoreError represents a failed document store call.
type StoreError struct {
	Collection string
	Op         string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s on %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}

// storeErr passes ErrNotFound and validation errors through and wraps
// everything else as unavailable.
func storeErr(collection, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Collection: collection, Op: op, Err: err}
}

// LessonError represents an error related to a lesson-scoped operation
type LessonError struct {
	LessonID string
	Op       string
	Err      error
}

func (e *LessonError) Error() string {
	return fmt.Sprintf("lesson operation %s failed for lesson %s: %v", e.Op, e.LessonID, e.Err)
}

func (e *LessonError) Unwrap() error {
	return e.Err
}

// FileFailure is the typed failure of one file in an upload batch. BlobKey is
// set when a blob was written (or attempted) for the file; for
// FailureMetadataWrite it names the orphaned blob.
type FileFailure struct {
	Kind    FailureKind
	BlobKey string
	Err     error
}

func (f *FileFailure) Error() string {
	if f.Err == nil {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *FileFailure) Unwrap() []error {
	errs := []error{f.Kind.sentinel()}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

func (f *FileFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Kind    string `json:"kind"`
		BlobKey string `json:"blob_key,omitempty"`
		Message string `json:"message,omitempty"`
	}{f.Kind.String(), f.BlobKey, msg})
}

func (k FailureKind) sentinel() error {
	switch k {
	case FailureTooLarge:
		return ErrTooLarge
	case FailureBlobWrite:
		return ErrBlobWriteFailed
	case FailureMetadataWrite:
		return ErrMetadataWriteFailed
	}
	return fmt.Errorf("unknown failure kind %d", uint8(k))
}
