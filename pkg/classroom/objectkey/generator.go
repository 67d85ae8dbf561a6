package objectkey

import (
	"fmt"
	"strings"
	"time"
)

// Prefix is the root of every attachment key.
const Prefix = "attachments/"

// Generator defines the interface for attachment key generation strategies
type Generator interface {
	// GenerateKey creates the blob key for the file at index seq of a batch.
	// seq counts earlier files in the same batch that share the name.
	GenerateKey(lessonID, fileName string, at time.Time, seq int) string
}

// TimestampGenerator produces keys of the form
// attachments/{lessonID}/{unixMillis}-{name}. Repeated names within one batch
// get attachments/{lessonID}/{unixMillis}.{seq}-{name}.
type TimestampGenerator struct{}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{}
}

func (g *TimestampGenerator) GenerateKey(lessonID, fileName string, at time.Time, seq int) string {
	ms := at.UnixMilli()
	name := sanitizeFilename(fileName)
	if seq > 0 {
		return fmt.Sprintf("%s%s/%d.%d-%s", Prefix, sanitizePathComponent(lessonID), ms, seq, name)
	}
	return fmt.Sprintf("%s%s/%d-%s", Prefix, sanitizePathComponent(lessonID), ms, name)
}

// CustomFuncGenerator allows callers to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(lessonID, fileName string, at time.Time, seq int) string
}

func NewCustomFuncGenerator(fn func(lessonID, fileName string, at time.Time, seq int) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{GenerateFunc: fn}
}

func (g *CustomFuncGenerator) GenerateKey(lessonID, fileName string, at time.Time, seq int) string {
	return g.GenerateFunc(lessonID, fileName, at, seq)
}

// LessonPrefix returns the key prefix under which a lesson's attachments live.
func LessonPrefix(lessonID string) string {
	return Prefix + sanitizePathComponent(lessonID) + "/"
}

// LessonFromKey returns the lesson id segment of an attachment key.
//
// The segment is the lesson id exactly as stored only when ValidLessonID
// holds for it. Keys are never built for ids containing "/", "\" or "..".
func LessonFromKey(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return "", false
	}
	lessonID, name, ok := strings.Cut(rest, "/")
	if !ok || lessonID == "" || name == "" {
		return "", false
	}
	return lessonID, true
}

// ValidLessonID reports whether id survives path sanitization unchanged, so
// the key segment built from it maps back to the same lesson.
func ValidLessonID(id string) bool {
	return sanitizePathComponent(id) == id
}

// NormalizeFilename returns the name segment GenerateKey embeds for fileName.
// Two names that normalize to the same string share a key unless their seq
// differs.
func NormalizeFilename(fileName string) string {
	return sanitizeFilename(fileName)
}

// Helper functions for path sanitization
func sanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
	)
	name := replacer.Replace(filename)
	if name == "" {
		return "file"
	}
	return name
}

func sanitizePathComponent(component string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
	)
	return replacer.Replace(component)
}

// NewRecommendedGenerator returns the default generator
func NewRecommendedGenerator() Generator {
	return NewTimestampGenerator()
}
