package classroom

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-classroom/pkg/classroom/objectkey"
)

// DefaultMaxFileSize is the per-file size cap (10 MiB).
const DefaultMaxFileSize int64 = 10 << 20

// PipelineConfig tunes an AttachmentPipeline. Zero values select defaults.
type PipelineConfig struct {
	// MaxFileSize in bytes; files above it fail with FailureTooLarge
	MaxFileSize int64
	// MaxConcurrent bounds the number of files in flight; <= 0 means unbounded
	MaxConcurrent int
	Keys          objectkey.Generator
	Now           func() time.Time
	Log           *zap.Logger
}

// AttachmentPipeline uploads batches of files to a lesson. Every file runs
// its own chain (blob write, then metadata write) concurrently with the
// others, and every chain settles before Upload returns.
type AttachmentPipeline struct {
	lessons       *ContentRepository
	attachments   *AttachmentRepository
	blobs         BlobStore
	keys          objectkey.Generator
	now           func() time.Time
	log           *zap.Logger
	maxFileSize   int64
	maxConcurrent int
}

// NewAttachmentPipeline creates a pipeline writing to blobs and recording
// metadata through attachments.
func NewAttachmentPipeline(lessons *ContentRepository, attachments *AttachmentRepository, blobs BlobStore, cfg PipelineConfig) *AttachmentPipeline {
	p := &AttachmentPipeline{
		lessons:       lessons,
		attachments:   attachments,
		blobs:         blobs,
		keys:          cfg.Keys,
		now:           cfg.Now,
		log:           cfg.Log,
		maxFileSize:   cfg.MaxFileSize,
		maxConcurrent: cfg.MaxConcurrent,
	}
	if p.keys == nil {
		p.keys = objectkey.NewRecommendedGenerator()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if p.maxFileSize <= 0 {
		p.maxFileSize = DefaultMaxFileSize
	}
	return p
}

// Upload stores files as attachments of lessonID.
//
// The returned error is non-nil only when the batch could not start: the
// lesson does not exist or could not be looked up. Per-file problems are
// reported in the outcome, one entry per input file in input order.
// Once started, chains run to completion even if ctx is cancelled.
func (p *AttachmentPipeline) Upload(ctx context.Context, lessonID string, files []UploadFile) (*UploadOutcome, error) {
	if !objectkey.ValidLessonID(lessonID) {
		return nil, &LessonError{LessonID: lessonID, Op: "upload", Err: invalid("lesson_id", "must not contain path separators")}
	}
	if err := p.lessons.Exists(ctx, lessonID); err != nil {
		return nil, &LessonError{LessonID: lessonID, Op: "upload", Err: err}
	}

	outcome := &UploadOutcome{
		LessonID: lessonID,
		Files:    make([]FileOutcome, len(files)),
	}
	seqs := collisionSeqs(files)
	detached := context.WithoutCancel(ctx)

	var g errgroup.Group
	if p.maxConcurrent > 0 {
		g.SetLimit(p.maxConcurrent)
	}
	for i := range files {
		i := i
		g.Go(func() error {
			outcome.Files[i] = p.uploadOne(detached, lessonID, files[i], seqs[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := len(outcome.Failures())
	p.log.Info("attachment batch settled",
		zap.String("lesson_id", lessonID),
		zap.Int("files", len(files)),
		zap.Int("succeeded", len(files)-failed),
		zap.Int("failed", failed))
	return outcome, nil
}

func (p *AttachmentPipeline) uploadOne(ctx context.Context, lessonID string, f UploadFile, seq int) FileOutcome {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = "untitled"
	}
	out := FileOutcome{Name: name}

	if size := f.size(); size > p.maxFileSize {
		out.Failure = &FileFailure{
			Kind: FailureTooLarge,
			Err:  fmt.Errorf("%d bytes exceeds limit of %d", size, p.maxFileSize),
		}
		return out
	}

	at := p.now()
	key := p.keys.GenerateKey(lessonID, name, at, seq)
	contentType := mimetype.Detect(f.Data).String()

	url, err := p.blobs.Put(ctx, key, f.Data, contentType)
	if err != nil {
		p.log.Warn("blob write failed",
			zap.String("lesson_id", lessonID),
			zap.String("blob_key", key),
			zap.Error(err))
		out.Failure = &FileFailure{Kind: FailureBlobWrite, BlobKey: key, Err: err}
		return out
	}

	size := int64(len(f.Data))
	if size == 0 {
		size = f.Size
	}
	record, err := p.attachments.Create(ctx, &Attachment{
		LessonID:    lessonID,
		DisplayName: name,
		BlobURL:     url,
		BlobKey:     key,
		Kind:        KindFromFilename(name),
		SizeBytes:   size,
		ContentType: contentType,
		UploadedAt:  at.UTC(),
	})
	if err != nil {
		p.log.Error("attachment record not stored, blob orphaned",
			zap.String("lesson_id", lessonID),
			zap.String("blob_key", key),
			zap.Error(err))
		out.Failure = &FileFailure{Kind: FailureMetadataWrite, BlobKey: key, Err: err}
		return out
	}

	out.Attachment = record
	return out
}

// collisionSeqs numbers repeated filenames by input position: the first
// occurrence gets 0, the n-th repeat gets n. Names are compared after key
// normalization, so "a/b.pdf" repeats "a_b.pdf".
func collisionSeqs(files []UploadFile) []int {
	seen := make(map[string]int, len(files))
	seqs := make([]int, len(files))
	for i, f := range files {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			name = "untitled"
		}
		name = objectkey.NormalizeFilename(name)
		seqs[i] = seen[name]
		seen[name]++
	}
	return seqs
}
