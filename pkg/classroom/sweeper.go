package classroom

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tendant/simple-classroom/pkg/classroom/objectkey"
)

// DefaultOrphanGracePeriod keeps blobs of in-flight uploads out of a sweep.
const DefaultOrphanGracePeriod = time.Hour

// SweepOptions controls a single sweep run.
type SweepOptions struct {
	// DryRun reports orphans without deleting them
	DryRun bool
	// GracePeriod overrides the sweeper's grace period when positive
	GracePeriod time.Duration
}

// SweepReport summarizes a sweep run.
type SweepReport struct {
	Scanned    int      `json:"scanned"`
	Referenced int      `json:"referenced"`
	Young      []string `json:"young,omitempty"`
	Orphans    []string `json:"orphans,omitempty"`
	Deleted    []string `json:"deleted,omitempty"`
	Failed     []string `json:"failed,omitempty"`
}

// OrphanSweeper reclaims blobs that have no attachment record, which is what
// an upload leaves behind when its metadata write fails.
type OrphanSweeper struct {
	blobs       BlobStore
	lister      BlobLister
	attachments AttachmentStore
	log         *zap.Logger
	now         func() time.Time
	grace       time.Duration
}

// SweeperConfig configures NewOrphanSweeper. Zero values select defaults.
type SweeperConfig struct {
	GracePeriod time.Duration
	Now         func() time.Time
	Log         *zap.Logger
}

// NewOrphanSweeper fails when blobs cannot enumerate its keys.
func NewOrphanSweeper(blobs BlobStore, attachments AttachmentStore, cfg SweeperConfig) (*OrphanSweeper, error) {
	lister, ok := blobs.(BlobLister)
	if !ok {
		return nil, fmt.Errorf("blob store %T does not support listing", blobs)
	}
	if attachments == nil {
		return nil, errors.New("attachment store is required")
	}
	s := &OrphanSweeper{
		blobs:       blobs,
		lister:      lister,
		attachments: attachments,
		log:         cfg.Log,
		now:         cfg.Now,
		grace:       cfg.GracePeriod,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.grace <= 0 {
		s.grace = DefaultOrphanGracePeriod
	}
	return s, nil
}

// Sweep lists every attachment blob, compares it with the attachment records
// of its lesson and deletes unreferenced blobs older than the grace period.
// Records of deleted lessons still count as references.
func (s *OrphanSweeper) Sweep(ctx context.Context, opts SweepOptions) (*SweepReport, error) {
	grace := s.grace
	if opts.GracePeriod > 0 {
		grace = opts.GracePeriod
	}
	cutoff := s.now().Add(-grace)

	blobs, err := s.lister.List(ctx, objectkey.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	byLesson := make(map[string][]BlobInfo)
	for _, b := range blobs {
		lessonID, ok := objectkey.LessonFromKey(b.Key)
		if !ok {
			continue
		}
		byLesson[lessonID] = append(byLesson[lessonID], b)
	}
	lessonIDs := make([]string, 0, len(byLesson))
	for id := range byLesson {
		lessonIDs = append(lessonIDs, id)
	}
	sort.Strings(lessonIDs)

	report := &SweepReport{}
	for _, lessonID := range lessonIDs {
		records, err := s.attachments.ListAttachments(ctx, lessonID)
		if err != nil {
			return report, storeErr("attachments", "list", err)
		}
		referenced := make(map[string]bool, len(records))
		for _, r := range records {
			referenced[r.BlobKey] = true
		}

		group := byLesson[lessonID]
		sort.Slice(group, func(i, j int) bool { return group[i].Key < group[j].Key })
		for _, b := range group {
			report.Scanned++
			switch {
			case referenced[b.Key]:
				report.Referenced++
			case b.UpdatedAt.After(cutoff):
				report.Young = append(report.Young, b.Key)
			default:
				report.Orphans = append(report.Orphans, b.Key)
				if opts.DryRun {
					continue
				}
				if err := s.blobs.Delete(ctx, b.Key); err != nil {
					s.log.Warn("orphan delete failed", zap.String("blob_key", b.Key), zap.Error(err))
					report.Failed = append(report.Failed, b.Key)
					continue
				}
				report.Deleted = append(report.Deleted, b.Key)
			}
		}
	}

	s.log.Info("orphan sweep finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("deleted", len(report.Deleted)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}
