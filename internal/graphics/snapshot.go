package graphics

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SnapshotWriter saves frames as numbered PNG files.
type SnapshotWriter struct {
	dir    string
	prefix string
}

// NewSnapshotWriter creates a writer that saves into dir, the working
// directory when empty.
func NewSnapshotWriter(dir string) *SnapshotWriter {
	return &SnapshotWriter{dir: dir, prefix: "frame"}
}

// Path returns the file a frame index is written to.
func (s *SnapshotWriter) Path(index uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%05d.png", s.prefix, index))
}

// Write encodes img as PNG and returns the file name.
func (s *SnapshotWriter) Write(img image.Image, index uint64) (string, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", errors.Wrap(err, "create snapshot directory")
		}
	}

	name := s.Path(index)
	f, err := os.Create(name)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", name)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", errors.Wrapf(err, "encode %s", name)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", name)
	}
	return name, nil
}
