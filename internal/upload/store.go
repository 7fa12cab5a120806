package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// URLPrefix is the path under which committed covers are served.
	URLPrefix = "uploads"
	// stageSuffix marks files whose database record has not been committed yet.
	stageSuffix = ".part"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]+$`)

// Store persists cover uploads in two phases: Stage writes the bytes under a
// generated name with a .part suffix, and Commit renames the file into place
// once the owning database row exists. Discard removes a staged file whose
// database write failed.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a store rooted
// at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory committed files live in.
func (s *Store) Dir() string {
	return s.dir
}

// StagedFile is an upload that has been written to disk but not committed.
type StagedFile struct {
	store *Store
	name  string
}

// Stage writes the upload to disk under a generated name that keeps the
// sanitized original extension. The client-supplied filename itself never
// reaches the filesystem.
func (s *Store) Stage(fh *multipart.FileHeader) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uuid.New().String() + sanitizeExt(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name+stageSuffix))
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("close upload: %w", err)
	}

	return &StagedFile{store: s, name: name}, nil
}

// Path returns the relative path the file will be served under after Commit.
// This is the value stored in Post.Cover.
func (f *StagedFile) Path() string {
	return path.Join(URLPrefix, f.name)
}

// Commit renames the staged file into its final name.
func (f *StagedFile) Commit() error {
	staged := filepath.Join(f.store.dir, f.name+stageSuffix)
	final := filepath.Join(f.store.dir, f.name)
	if err := os.Rename(staged, final); err != nil {
		return fmt.Errorf("finalize upload: %w", err)
	}
	return nil
}

// Discard removes the staged file.
func (f *StagedFile) Discard() error {
	return os.Remove(filepath.Join(f.store.dir, f.name+stageSuffix))
}

// sanitizeExt derives a safe extension from the client filename. Anything
// that is not a plain lowercase alphanumeric extension is dropped, so a name
// with no dot, trailing dots, or traversal characters yields no extension.
func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !extPattern.MatchString(ext) {
		return ""
	}
	return ext
}
