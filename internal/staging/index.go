// Package staging holds the mutable pre-commit set of path→fingerprint
// intents. The index is the repository's only cross-invocation mutable
// state besides the commit log and is rewritten wholesale on every
// mutation.
package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"minivc/internal/hash"
	"minivc/internal/vcerrors"
)

// Entry is one staged file: a path relative to the working-tree root
// and the fingerprint captured at staging time. The fingerprint is a
// hint, not a guarantee — the commit step re-hashes from disk.
type Entry struct {
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

type record struct {
	Staged []Entry `json:"staged"`
}

// Index persists staged entries as a single JSON record. At most one
// entry exists per normalized path; re-staging replaces in place.
type Index struct {
	worktree string
	path     string
	logger   *zap.Logger
}

func NewIndex(worktree, path string, logger *zap.Logger) *Index {
	return &Index{
		worktree: worktree,
		path:     path,
		logger:   logger,
	}
}

// Init writes an empty record unless one already exists.
func (i *Index) Init() error {
	if _, err := os.Stat(i.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stating staging index: %w", err)
	}
	return i.write(record{Staged: []Entry{}})
}

// Stage fingerprints the file at path and upserts its entry, persisting
// the index before returning. Paths are normalized so "./a" and "a"
// share one entry; absolute paths are recorded relative to the
// working-tree root.
func (i *Index) Stage(path string) (Entry, error) {
	normalized, err := i.normalize(path)
	if err != nil {
		return Entry{}, err
	}

	abs := filepath.Join(i.worktree, normalized)
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return Entry{}, vcerrors.SourceNotFound(path)
		}
		return Entry{}, fmt.Errorf("stating %s: %w", path, err)
	}

	sha, err := hash.File(abs)
	if err != nil {
		return Entry{}, err
	}

	rec, err := i.read()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Path: normalized, SHA: sha}
	replaced := false
	for idx := range rec.Staged {
		if rec.Staged[idx].Path == normalized {
			rec.Staged[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		rec.Staged = append(rec.Staged, entry)
	}

	if err := i.write(rec); err != nil {
		return Entry{}, err
	}

	i.logger.Debug("staged",
		zap.String("path", normalized),
		zap.String("sha", sha),
		zap.Bool("replaced", replaced))
	return entry, nil
}

// List returns the staged entries in staging order.
func (i *Index) List() ([]Entry, error) {
	rec, err := i.read()
	if err != nil {
		return nil, err
	}
	return rec.Staged, nil
}

// Clear persists an empty index. Called only after a commit record is
// durably written.
func (i *Index) Clear() error {
	return i.write(record{Staged: []Entry{}})
}

func (i *Index) normalize(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(i.worktree, path)
		if err != nil {
			return "", fmt.Errorf("resolving %s against %s: %w", path, i.worktree, err)
		}
		return filepath.Clean(rel), nil
	}
	return filepath.Clean(path), nil
}

func (i *Index) read() (record, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if os.IsNotExist(err) {
			return record{Staged: []Entry{}}, nil
		}
		return record{}, fmt.Errorf("reading staging index: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, fmt.Errorf("parsing staging index: %w", err)
	}
	if rec.Staged == nil {
		rec.Staged = []Entry{}
	}
	return rec, nil
}

func (i *Index) write(rec record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling staging index: %w", err)
	}

	// Wholesale rewrite through a temp file so a crash never leaves a
	// torn index readable under the final name.
	tmp := i.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing staging index: %w", err)
	}
	if err := os.Rename(tmp, i.path); err != nil {
		return fmt.Errorf("replacing staging index: %w", err)
	}
	return nil
}
