package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tendant/simple-classroom/pkg/classroom"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	LessonsCollection     = "lessons"
	CommentsCollection    = "comments"
	AttachmentsCollection = "attachments"
)

const (
	readTimeout  = 5 * time.Second
	writeTimeout = 3 * time.Second
)

// Repository implements classroom.Store on a MongoDB database. Ids are
// ObjectID hex strings.
type Repository struct {
	db          *mongo.Database
	lessons     *mongo.Collection
	comments    *mongo.Collection
	attachments *mongo.Collection
}

// New wraps db. Call EnsureIndexes once at startup.
func New(db *mongo.Database) *Repository {
	return &Repository{
		db:          db,
		lessons:     db.Collection(LessonsCollection),
		comments:    db.Collection(CommentsCollection),
		attachments: db.Collection(AttachmentsCollection),
	}
}

var _ classroom.Store = (*Repository)(nil)

// EnsureIndexes creates the indexes backing the list orderings.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.lessons.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}},
	}); err != nil {
		return fmt.Errorf("lessons index: %w", err)
	}
	if _, err := r.comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "lesson_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		return fmt.Errorf("comments index: %w", err)
	}
	if _, err := r.attachments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "lesson_id", Value: 1}, {Key: "uploaded_at", Value: -1}}},
		{Keys: bson.D{{Key: "blob_key", Value: 1}}, Options: options.Index().SetUnique(true)},
	}); err != nil {
		return fmt.Errorf("attachments index: %w", err)
	}
	return nil
}

type lessonDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	Title             string             `bson:"title"`
	Description       string             `bson:"description"`
	VideoRef          string             `bson:"video_ref"`
	ThumbnailURL      string             `bson:"thumbnail_url"`
	AuthorDisplayName string             `bson:"author_display_name"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func (d lessonDoc) toLesson() *classroom.Lesson {
	return &classroom.Lesson{
		ID:                d.ID.Hex(),
		Title:             d.Title,
		Description:       d.Description,
		VideoRef:          d.VideoRef,
		ThumbnailURL:      d.ThumbnailURL,
		AuthorDisplayName: d.AuthorDisplayName,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

type commentDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	LessonID          string             `bson:"lesson_id"`
	AuthorID          string             `bson:"author_id"`
	AuthorDisplayName string             `bson:"author_display_name"`
	AuthorPhotoURL    string             `bson:"author_photo_url,omitempty"`
	Content           string             `bson:"content"`
	CreatedAt         time.Time          `bson:"created_at"`
}

type attachmentDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	LessonID    string             `bson:"lesson_id"`
	DisplayName string             `bson:"display_name"`
	BlobURL     string             `bson:"blob_url"`
	BlobKey     string             `bson:"blob_key"`
	Kind        string             `bson:"kind"`
	SizeBytes   int64              `bson:"size_bytes"`
	ContentType string             `bson:"content_type,omitempty"`
	UploadedAt  time.Time          `bson:"uploaded_at"`
}

func (d attachmentDoc) toAttachment() (*classroom.Attachment, error) {
	kind, err := classroom.ParseAttachmentKind(d.Kind)
	if err != nil {
		return nil, err
	}
	return &classroom.Attachment{
		ID:          d.ID.Hex(),
		LessonID:    d.LessonID,
		DisplayName: d.DisplayName,
		BlobURL:     d.BlobURL,
		BlobKey:     d.BlobKey,
		Kind:        kind,
		SizeBytes:   d.SizeBytes,
		ContentType: d.ContentType,
		UploadedAt:  d.UploadedAt.UTC(),
	}, nil
}

// objectID parses a hex id. Malformed ids cannot exist in the store, so
// they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, classroom.ErrNotFound
	}
	return oid, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return classroom.ErrNotFound
	}
	return err
}

// Lesson operations

func (r *Repository) CreateLesson(ctx context.Context, lesson *classroom.Lesson) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	doc := lessonDoc{
		ID:                primitive.NewObjectID(),
		Title:             lesson.Title,
		Description:       lesson.Description,
		VideoRef:          lesson.VideoRef,
		ThumbnailURL:      lesson.ThumbnailURL,
		AuthorDisplayName: lesson.AuthorDisplayName,
		CreatedAt:         lesson.CreatedAt,
		UpdatedAt:         lesson.UpdatedAt,
	}
	if _, err := r.lessons.InsertOne(ctx, doc); err != nil {
		return err
	}
	lesson.ID = doc.ID.Hex()
	return nil
}

func (r *Repository) GetLesson(ctx context.Context, id string) (*classroom.Lesson, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var doc lessonDoc
	if err := r.lessons.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toLesson(), nil
}

func (r *Repository) ListLessons(ctx context.Context) ([]*classroom.Lesson, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.lessons.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*classroom.Lesson{}
	for cur.Next(ctx) {
		var doc lessonDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toLesson())
	}
	return out, cur.Err()
}

func (r *Repository) DeleteLesson(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	res, err := r.lessons.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return classroom.ErrNotFound
	}
	return nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *classroom.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	doc := commentDoc{
		ID:                primitive.NewObjectID(),
		LessonID:          comment.LessonID,
		AuthorID:          comment.AuthorID,
		AuthorDisplayName: comment.AuthorDisplayName,
		AuthorPhotoURL:    comment.AuthorPhotoURL,
		Content:           comment.Content,
		CreatedAt:         comment.CreatedAt,
	}
	if _, err := r.comments.InsertOne(ctx, doc); err != nil {
		return err
	}
	comment.ID = doc.ID.Hex()
	return nil
}

func (r *Repository) ListComments(ctx context.Context, lessonID string) ([]*classroom.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.comments.Find(ctx, bson.M{"lesson_id": lessonID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*classroom.Comment{}
	for cur.Next(ctx) {
		var doc commentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, &classroom.Comment{
			ID:                doc.ID.Hex(),
			LessonID:          doc.LessonID,
			AuthorID:          doc.AuthorID,
			AuthorDisplayName: doc.AuthorDisplayName,
			AuthorPhotoURL:    doc.AuthorPhotoURL,
			Content:           doc.Content,
			CreatedAt:         doc.CreatedAt.UTC(),
		})
	}
	return out, cur.Err()
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, a *classroom.Attachment) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	doc := attachmentDoc{
		ID:          primitive.NewObjectID(),
		LessonID:    a.LessonID,
		DisplayName: a.DisplayName,
		BlobURL:     a.BlobURL,
		BlobKey:     a.BlobKey,
		Kind:        string(a.Kind),
		SizeBytes:   a.SizeBytes,
		ContentType: a.ContentType,
		UploadedAt:  a.UploadedAt,
	}
	if _, err := r.attachments.InsertOne(ctx, doc); err != nil {
		return err
	}
	a.ID = doc.ID.Hex()
	return nil
}

func (r *Repository) GetAttachment(ctx context.Context, id string) (*classroom.Attachment, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var doc attachmentDoc
	if err := r.attachments.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	return doc.toAttachment()
}

func (r *Repository) ListAttachments(ctx context.Context, lessonID string) ([]*classroom.Attachment, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.attachments.Find(ctx, bson.M{"lesson_id": lessonID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*classroom.Attachment{}
	for cur.Next(ctx) {
		var doc attachmentDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		a, err := doc.toAttachment()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}
