package classroom_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-classroom/pkg/classroom"
)

func TestFileFailure(t *testing.T) {
	cause := errors.New("disk full")
	f := &classroom.FileFailure{Kind: classroom.FailureBlobWrite, BlobKey: "attachments/l/1-a", Err: cause}

	assert.ErrorIs(t, f, classroom.ErrBlobWriteFailed)
	assert.ErrorIs(t, f, cause)
	assert.NotErrorIs(t, f, classroom.ErrTooLarge)
	assert.Equal(t, "blob_write_failed: disk full", f.Error())

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"blob_write_failed","blob_key":"attachments/l/1-a","message":"disk full"}`, string(data))
}

func TestFailureKindString(t *testing.T) {
	assert.Equal(t, "too_large", classroom.FailureTooLarge.String())
	assert.Equal(t, "blob_write_failed", classroom.FailureBlobWrite.String())
	assert.Equal(t, "metadata_write_failed", classroom.FailureMetadataWrite.String())
}

func TestValidationError(t *testing.T) {
	var err error = &classroom.ValidationError{Field: "title", Reason: "required"}
	assert.ErrorIs(t, err, classroom.ErrValidation)
	assert.Equal(t, "invalid title: required", err.Error())
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	var err error = &classroom.StoreError{Collection: "comments", Op: "list", Err: cause}
	assert.ErrorIs(t, err, classroom.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestParseAttachmentKind(t *testing.T) {
	k, err := classroom.ParseAttachmentKind("pdf")
	require.NoError(t, err)
	assert.Equal(t, classroom.KindPDF, k)

	_, err = classroom.ParseAttachmentKind("video")
	assert.Error(t, err)
}
