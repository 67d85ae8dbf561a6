package presets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-classroom/pkg/classroom"
)

func TestNewDevelopment(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dev-data")
	svc, cleanup, err := NewDevelopment(WithDevStorage(dir), WithDevURLPrefix("http://localhost:8080/files"))
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	lesson, err := svc.CreateLesson(ctx, FixtureLessons()[0])
	require.NoError(t, err)

	outcome, err := svc.UploadAttachments(ctx, lesson.ID, []classroom.UploadFile{{Name: "map.png", Data: []byte("png")}})
	require.NoError(t, err)
	require.True(t, outcome.AllSucceeded())
	assert.Contains(t, outcome.Files[0].Attachment.BlobURL, "http://localhost:8080/files/attachments/"+lesson.ID+"/")
	assert.FileExists(t, filepath.Join(dir, outcome.Files[0].Attachment.BlobKey))

	cleanup()
	assert.NoDirExists(t, dir)
}

func TestNewTesting(t *testing.T) {
	env := NewTesting(t)
	lessons, err := env.ListLessons(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.Equal(t, 0, env.Blobs.Len())
}

func TestNewTestingWithFixtures(t *testing.T) {
	env := NewTesting(t, WithTestFixtures())
	lessons, err := env.ListLessons(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, len(FixtureLessons()))
	for _, l := range lessons {
		assert.Len(t, l.VideoRef, classroom.VideoRefLength)
	}
}

func TestNewTestingServiceOptions(t *testing.T) {
	env := NewTesting(t, WithServiceOptions(classroom.WithMaxFileSize(4), classroom.WithDefaultAuthor("Ms. Rivera")))
	ctx := context.Background()

	lesson, err := env.CreateLesson(ctx, FixtureLessons()[1])
	require.NoError(t, err)
	assert.Equal(t, "Ms. Rivera", lesson.AuthorDisplayName)

	outcome, err := env.UploadAttachments(ctx, lesson.ID, []classroom.UploadFile{{Name: "big.pdf", Data: []byte("too big")}})
	require.NoError(t, err)
	require.Len(t, outcome.Failures(), 1)
	assert.ErrorIs(t, outcome.Files[0].Failure, classroom.ErrTooLarge)
	assert.Equal(t, 0, env.Blobs.Len())
}
