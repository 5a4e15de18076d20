package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-summarizer/errors"
)

// LocalStore keeps audio files in a directory on disk.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, pkgerrors.Wrapf(err, "create audio directory %s", dir)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, name string, r io.Reader) error {
	const op = "LocalStore.Save"

	if !ValidAudioName(name) {
		return errors.InvalidInput(op, nil, "invalid audio file name")
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return pkgerrors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return pkgerrors.Wrap(err, "write audio")
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrap(err, "close audio")
	}

	// Rename so readers never observe a partially written file.
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return pkgerrors.Wrap(err, "move audio into place")
	}
	return nil
}

func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	const op = "LocalStore.Open"

	if !ValidAudioName(name) {
		return nil, errors.NotFound(op, nil, "Audio file not found")
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(op, err, "Audio file not found")
		}
		return nil, errors.Internal(op, err, "Failed to open audio file")
	}
	return f, nil
}
