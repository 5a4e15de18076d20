package storage

import (
	"context"
	"io"
	"regexp"

	"github.com/google/uuid"
)

// Store keeps synthesized audio files addressed by name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) error
	// Open fails with a NotFound error when name is unknown.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

var audioNamePattern = regexp.MustCompile(
	`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp3$`,
)

// NewAudioName returns a fresh random "<uuid>.mp3" file name.
func NewAudioName() string {
	return uuid.NewString() + ".mp3"
}

// ValidAudioName reports whether name has the shape NewAudioName produces.
// Anything else, including path separators, is rejected.
func ValidAudioName(name string) bool {
	return audioNamePattern.MatchString(name)
}
