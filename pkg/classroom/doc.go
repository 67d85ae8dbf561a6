// Package classroom provides the content and attachment layer behind a
// video-lesson dashboard: lessons, their discussion comments, and the files
// attached to them.
//
// It exposes a single Service interface that the presentation layer calls.
// Record persistence goes through the LessonStore, CommentStore and
// AttachmentStore interfaces (memory, Postgres and MongoDB implementations
// live under repo/), and file bytes go through a BlobStore (memory,
// filesystem, S3 and GCS implementations live under storage/).
//
// Attachment Consistency
//
// An attachment is two writes to two independent stores: the blob first, the
// metadata record second. There is no transaction spanning them. When the
// metadata write fails the blob is left in place and the failure is reported
// per file as MetadataWriteFailed, carrying the orphaned blob key. Orphaned
// blobs are reclaimed by OrphanSweeper, which runs as its own job and is
// never invoked from an upload.
package classroom
