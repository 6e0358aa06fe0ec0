// Package object implements the content-addressed object store. An
// object is an immutable copy of a file's bytes named
// <fingerprint>_<baseName>. Dedup is keyed on that pair, not the
// fingerprint alone, so identical content staged under two different
// base names is stored twice — a deliberate coarse policy.
package object

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"minivc/internal/vcerrors"
)

const knownCacheSize = 1024

// Store persists objects under a single directory. Objects are never
// mutated or deleted once written.
type Store struct {
	root   string
	known  *lru.Cache[string, struct{}] // names confirmed present on disk
	logger *zap.Logger
}

func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating objects directory: %w", err)
	}

	known, err := lru.New[string, struct{}](knownCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating object cache: %w", err)
	}

	return &Store{
		root:   root,
		known:  known,
		logger: logger,
	}, nil
}

// Name returns the storage name for a fingerprint and source path.
func Name(fingerprint, sourcePath string) string {
	return fingerprint + "_" + filepath.Base(sourcePath)
}

// Put copies the file at sourcePath into the store. An existing object
// with the target name is trusted to hold identical bytes without
// re-verification: the name embeds the fingerprint, so a mismatch would
// mean a digest collision or external tampering, neither of which this
// store defends against.
func (s *Store) Put(sourcePath, fingerprint string) (string, error) {
	name := Name(fingerprint, sourcePath)
	if s.Exists(name) {
		s.logger.Debug("object already stored", zap.String("object", name))
		return name, nil
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", sourcePath, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stating %s: %w", sourcePath, err)
	}

	if err := WriteFilePreserving(s.path(name), src, info); err != nil {
		return "", fmt.Errorf("storing object %s: %w", name, err)
	}

	s.known.Add(name, struct{}{})
	s.logger.Debug("object stored",
		zap.String("object", name),
		zap.Int64("size", info.Size()))
	return name, nil
}

// Exists checks if an object is present in the store.
func (s *Store) Exists(name string) bool {
	if s.known.Contains(name) {
		return true
	}

	if _, err := os.Stat(s.path(name)); err != nil {
		return false
	}

	s.known.Add(name, struct{}{})
	return true
}

// Open returns the object's bytes for streaming along with the file
// metadata a restore preserves, failing with a MissingObject error when
// the object is absent.
func (s *Store) Open(name string) (io.ReadCloser, fs.FileInfo, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, vcerrors.MissingObject(name)
		}
		return nil, nil, fmt.Errorf("opening object %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stating object %s: %w", name, err)
	}

	return f, info, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name)
}

// WriteFilePreserving streams r to dst via a temp file and rename, so a
// partially written file is never visible under its final name, then
// applies info's permission bits and modtime to the result.
func WriteFilePreserving(dst string, r io.Reader, info fs.FileInfo) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".minivc-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("copying content: %w", err)
	}

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("setting mode: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming into place: %w", err)
	}

	if err := os.Chtimes(dst, time.Now(), info.ModTime()); err != nil {
		return fmt.Errorf("setting times on %s: %w", dst, err)
	}

	return nil
}
