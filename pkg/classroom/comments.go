package classroom

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CommentLedger is the append-only, per-lesson log of comments.
type CommentLedger struct {
	store   CommentStore
	lessons *ContentRepository
	log     *zap.Logger
	now     func() time.Time
}

// NewCommentLedger wraps a CommentStore. Lesson existence is checked through lessons.
func NewCommentLedger(store CommentStore, lessons *ContentRepository, log *zap.Logger, now func() time.Time) *CommentLedger {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &CommentLedger{store: store, lessons: lessons, log: log, now: now}
}

// List returns the comments of a lesson, oldest first.
func (l *CommentLedger) List(ctx context.Context, lessonID string) ([]*Comment, error) {
	if err := l.lessons.Exists(ctx, lessonID); err != nil {
		return nil, err
	}
	comments, err := l.store.ListComments(ctx, lessonID)
	if err != nil {
		return nil, storeErr("comments", "list", err)
	}
	sortComments(comments)
	return comments, nil
}

// Append stores a new comment by author on the lesson.
func (l *CommentLedger) Append(ctx context.Context, lessonID string, author Principal, content string) (*Comment, error) {
	body := strings.TrimSpace(content)
	if body == "" {
		return nil, invalid("content", "must not be empty")
	}
	if strings.TrimSpace(author.ID) == "" {
		return nil, invalid("author_id", "required")
	}
	if err := l.lessons.Exists(ctx, lessonID); err != nil {
		return nil, err
	}

	comment := &Comment{
		LessonID:          lessonID,
		AuthorID:          author.ID,
		AuthorDisplayName: author.DisplayName,
		AuthorPhotoURL:    author.PhotoURL,
		Content:           body,
		CreatedAt:         l.now().UTC(),
	}
	if err := l.store.CreateComment(ctx, comment); err != nil {
		return nil, storeErr("comments", "create", err)
	}

	l.log.Debug("comment appended",
		zap.String("lesson_id", lessonID),
		zap.String("comment_id", comment.ID),
		zap.String("author_id", author.ID))
	return comment, nil
}

func sortComments(comments []*Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return commentLess(comments[i], comments[j])
	})
}

func commentLess(a, b *Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// CommentEntry is one row of a client-side comment view. A pending entry is a
// comment shown before the server acknowledged it; it is identified by
// LocalID until ConfirmComment swaps in the stored record.
type CommentEntry struct {
	Comment Comment `json:"comment"`
	LocalID string  `json:"local_id,omitempty"`
	Pending bool    `json:"pending"`
}

// NewPendingComment builds a placeholder entry for a comment that has been
// submitted but not yet acknowledged.
func NewPendingComment(localID string, draft Comment) CommentEntry {
	draft.ID = ""
	return CommentEntry{Comment: draft, LocalID: localID, Pending: true}
}

// ConfirmComment replaces the pending entry with the given local id by the
// stored record. If the stored record is already in the view the placeholder
// is dropped instead, so the record is never shown twice.
func ConfirmComment(view []CommentEntry, localID string, stored Comment) []CommentEntry {
	out := make([]CommentEntry, 0, len(view))
	present := false
	for _, e := range view {
		if !e.Pending && e.Comment.ID == stored.ID {
			present = true
		}
	}
	for _, e := range view {
		if e.Pending && e.LocalID == localID {
			if !present {
				out = append(out, CommentEntry{Comment: stored})
				present = true
			}
			continue
		}
		out = append(out, e)
	}
	if !present {
		out = append(out, CommentEntry{Comment: stored})
	}
	return out
}

// MergeComments combines a client view with a freshly fetched list. Fetched
// records are authoritative; confirmed records missing from the fetch are
// kept; every server id appears exactly once. Pending entries follow the
// confirmed ones in their original order.
func MergeComments(view []CommentEntry, fetched []*Comment) []CommentEntry {
	byID := make(map[string]*Comment, len(fetched)+len(view))
	for _, e := range view {
		if e.Pending || e.Comment.ID == "" {
			continue
		}
		c := e.Comment
		byID[c.ID] = &c
	}
	for _, c := range fetched {
		if c == nil || c.ID == "" {
			continue
		}
		cp := *c
		byID[c.ID] = &cp
	}

	confirmed := make([]*Comment, 0, len(byID))
	for _, c := range byID {
		confirmed = append(confirmed, c)
	}
	sortComments(confirmed)

	out := make([]CommentEntry, 0, len(view)+len(fetched))
	for _, c := range confirmed {
		out = append(out, CommentEntry{Comment: *c})
	}
	for _, e := range view {
		if e.Pending {
			out = append(out, e)
		}
	}
	return out
}
