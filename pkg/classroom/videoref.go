package classroom

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// VideoRefLength is the length of a canonical video identifier.
const VideoRefLength = 11

var (
	videoURLPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([^#&?]*).*`)
	videoRefPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoRef returns the 11-character video identifier contained in a
// submitted video URL. Short links, watch links, embed links and
// channel-scoped links all yield the same identifier, and a bare identifier
// yields itself.
func ExtractVideoRef(input string) (string, bool) {
	s := strings.TrimSpace(input)
	if videoRefPattern.MatchString(s) {
		return s, true
	}
	m := videoURLPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	id := m[2]
	if !videoRefPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// DefaultThumbnailURL is the thumbnail used when a lesson is created without one.
func DefaultThumbnailURL(videoRef string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoRef)
}

// KindFromFilename derives the attachment kind from the filename extension,
// case-insensitively. Unknown extensions are documents.
func KindFromFilename(name string) AttachmentKind {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(name), ".")) {
	case "pdf":
		return KindPDF
	case "jpg", "jpeg", "png", "gif", "webp":
		return KindImage
	default:
		return KindDocument
	}
}
