package objectkey

import (
	"testing"
	"time"
)

func TestTimestampGenerator(t *testing.T) {
	gen := NewTimestampGenerator()
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		lessonID string
		fileName string
		seq      int
		expected string
	}{
		{
			name:     "first occurrence",
			lessonID: "lesson-1",
			fileName: "notes.pdf",
			expected: "attachments/lesson-1/1700000000123-notes.pdf",
		},
		{
			name:     "repeated name",
			lessonID: "lesson-1",
			fileName: "notes.pdf",
			seq:      2,
			expected: "attachments/lesson-1/1700000000123.2-notes.pdf",
		},
		{
			name:     "separators in filename",
			lessonID: "lesson-1",
			fileName: "a/b\\c.png",
			expected: "attachments/lesson-1/1700000000123-a_b_c.png",
		},
		{
			name:     "spaces kept",
			lessonID: "lesson-1",
			fileName: "week 1 slides.pptx",
			expected: "attachments/lesson-1/1700000000123-week 1 slides.pptx",
		},
		{
			name:     "empty filename",
			lessonID: "lesson-1",
			fileName: "",
			expected: "attachments/lesson-1/1700000000123-file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := gen.GenerateKey(tt.lessonID, tt.fileName, at, tt.seq)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestLessonFromKey(t *testing.T) {
	tests := []struct {
		key      string
		lessonID string
		ok       bool
	}{
		{"attachments/lesson-1/1700000000123-notes.pdf", "lesson-1", true},
		{"attachments/lesson-1/", "", false},
		{"attachments/", "", false},
		{"other/lesson-1/x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			id, ok := LessonFromKey(tt.key)
			if ok != tt.ok || id != tt.lessonID {
				t.Errorf("LessonFromKey(%q) = %q, %v", tt.key, id, ok)
			}
		})
	}
}

func TestLessonPrefixRoundTrip(t *testing.T) {
	gen := NewRecommendedGenerator()
	key := gen.GenerateKey("abc", "x.txt", time.Now(), 0)
	if got := LessonPrefix("abc"); key[:len(got)] != got {
		t.Errorf("key %s does not start with %s", key, got)
	}
}

func TestCustomFuncGenerator(t *testing.T) {
	gen := NewCustomFuncGenerator(func(lessonID, fileName string, _ time.Time, _ int) string {
		return lessonID + ":" + fileName
	})
	if got := gen.GenerateKey("l", "f", time.Time{}, 0); got != "l:f" {
		t.Errorf("unexpected key %s", got)
	}
}

func TestNormalizeFilename(t *testing.T) {
	gen := NewTimestampGenerator()
	at := time.UnixMilli(5000)
	for _, pair := range [][2]string{{"a/b.pdf", "a_b.pdf"}, {`a\b.pdf`, "a_b.pdf"}} {
		if NormalizeFilename(pair[0]) != NormalizeFilename(pair[1]) {
			t.Errorf("expected %q and %q to normalize alike", pair[0], pair[1])
		}
		if gen.GenerateKey("l", pair[0], at, 0) != gen.GenerateKey("l", pair[1], at, 0) {
			t.Errorf("expected %q and %q to share a key at seq 0", pair[0], pair[1])
		}
	}
	if got := NormalizeFilename(""); got != "file" {
		t.Errorf("NormalizeFilename(\"\") = %q", got)
	}
}

func TestValidLessonID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"0192d4e5-7a1b-7c3d-8e9f-0a1b2c3d4e5f", true},
		{"652f1c9e8b3a4d0012345678", true},
		{"lesson-1", true},
		{"a/b", false},
		{`a\b`, false},
		{"..", false},
		{"x..y", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ValidLessonID(tt.id); got != tt.valid {
				t.Errorf("ValidLessonID(%q) = %v", tt.id, got)
			}
			if tt.valid {
				key := NewTimestampGenerator().GenerateKey(tt.id, "x.txt", time.UnixMilli(1), 0)
				if id, ok := LessonFromKey(key); !ok || id != tt.id {
					t.Errorf("LessonFromKey(%q) = %q, %v", key, id, ok)
				}
			}
		})
	}
}
