package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/shortid"
)

const maxFileSize = 10 << 20

// ErrInvalidFile marks uploads rejected by validation, as opposed to
// storage failures.
var ErrInvalidFile = errors.New("invalid file")

// SavedFile describes a stored upload. URL is the public path the file is
// served under, Name the original client filename.
type SavedFile struct {
	Path string
	URL  string
	Name string
	Type string
}

// BlobStore persists channel uploads.
type BlobStore interface {
	Save(channelId int, filename string, data []byte) (*SavedFile, error)
}

// LocalStore writes uploads beneath a root directory, one subdirectory per
// channel. Stored names are generated so uploads never collide or leak the
// client's filename into the filesystem.
type LocalStore struct {
	root string
	sid  *shortid.Shortid
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	sid, err := shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		return nil, err
	}

	return &LocalStore{root: root, sid: sid}, nil
}

func (s *LocalStore) Save(channelId int, filename string, data []byte) (*SavedFile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidFile)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidFile, maxFileSize)
	}

	name, err := s.sid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate filename: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	stored := name + ext

	dir := filepath.Join(s.root, "channels", fmt.Sprint(channelId))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create channel dir: %w", err)
	}

	path := filepath.Join(dir, stored)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}

	return &SavedFile{
		Path: path,
		URL:  fmt.Sprintf("/uploads/channels/%d/%s", channelId, stored),
		Name: filename,
		Type: strings.TrimPrefix(ext, "."),
	}, nil
}
