package filestore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const MaxImageSize = 2 << 20 // 2MB per file

var ErrUnsupportedType = errors.New("only .png, .jpg and .jpeg files are allowed")

// Store writes uploaded review and product images to a local directory
// with collision-safe timestamped names.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Save persists one multipart file and returns the stored filename.
func (s *Store) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", fh.Filename, MaxImageSize)
	}
	if !allowedExt(fh.Filename) {
		return "", ErrUnsupportedType
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), filepath.Base(fh.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// SaveAll persists up to limit files, removing everything already
// written when any file fails.
func (s *Store) SaveAll(fhs []*multipart.FileHeader, limit int) ([]string, error) {
	if len(fhs) > limit {
		return nil, fmt.Errorf("at most %d files allowed", limit)
	}

	names := make([]string, 0, len(fhs))
	for _, fh := range fhs {
		name, err := s.Save(fh)
		if err != nil {
			for _, n := range names {
				os.Remove(filepath.Join(s.dir, n))
			}
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Dir returns the directory the store writes into, for static serving.
func (s *Store) Dir() string {
	return s.dir
}
