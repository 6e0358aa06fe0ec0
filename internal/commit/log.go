// Package commit implements the append-only commit log: one immutable
// JSON record per commit id, retrievable by id alone.
package commit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"minivc/internal/hash"
	"minivc/internal/object"
	"minivc/internal/staging"
	"minivc/internal/vcerrors"
)

const recordCacheSize = 256

// FileEntry binds a working-tree path to a stored object and the
// fingerprint the object was stored under.
type FileEntry struct {
	Path   string `json:"path"`
	Object string `json:"object"`
	SHA    string `json:"sha"`
}

// Record is one immutable commit. Files preserves staging order.
type Record struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
	Files     []FileEntry `json:"files"`
}

// Log owns the commit records. Records are permanently retained and
// never rewritten once persisted.
type Log struct {
	worktree string
	root     string
	objects  *object.Store
	staging  *staging.Index
	cache    *lru.Cache[string, *Record]
	logger   *zap.Logger
}

func NewLog(worktree, root string, objects *object.Store, idx *staging.Index, logger *zap.Logger) (*Log, error) {
	cache, err := lru.New[string, *Record](recordCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating record cache: %w", err)
	}

	return &Log{
		worktree: worktree,
		root:     root,
		objects:  objects,
		staging:  idx,
		cache:    cache,
		logger:   logger,
	}, nil
}

// Commit snapshots the staging index into a new record. Staged files
// that vanished from the working tree are skipped with a warning rather
// than aborting the commit; fingerprints are recomputed from disk so
// post-stage edits are captured. A commit whose staged files all
// vanished still produces a (file-less) record. The staging index is
// cleared only after the record is durably written.
func (l *Log) Commit(message string) (*Record, error) {
	staged, err := l.staging.List()
	if err != nil {
		return nil, err
	}
	if len(staged) == 0 {
		return nil, vcerrors.EmptyStaging()
	}

	rec := &Record{
		ID:        newID(),
		Timestamp: time.Now().UTC(),
		Message:   message,
		Files:     []FileEntry{},
	}

	for _, entry := range staged {
		abs := filepath.Join(l.worktree, entry.Path)
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				l.logger.Warn("staged file no longer exists, skipping",
					zap.String("path", entry.Path))
				continue
			}
			return nil, fmt.Errorf("stating %s: %w", entry.Path, err)
		}

		sha, err := hash.File(abs)
		if err != nil {
			return nil, err
		}

		name, err := l.objects.Put(abs, sha)
		if err != nil {
			return nil, err
		}

		rec.Files = append(rec.Files, FileEntry{
			Path:   entry.Path,
			Object: name,
			SHA:    sha,
		})
	}

	if err := l.append(rec); err != nil {
		return nil, err
	}

	// A crash before this point leaves the record and a stale index;
	// re-committing then yields a duplicate record, not data loss.
	if err := l.staging.Clear(); err != nil {
		return nil, err
	}

	l.cache.Add(rec.ID, rec)
	l.logger.Info("commit created",
		zap.String("id", rec.ID),
		zap.Int("files", len(rec.Files)),
		zap.Int("staged", len(staged)))
	return rec, nil
}

// Get loads a record by id.
func (l *Log) Get(id string) (*Record, error) {
	if rec, ok := l.cache.Get(id); ok {
		return rec, nil
	}

	data, err := os.ReadFile(l.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vcerrors.CommitNotFound(id)
		}
		return nil, fmt.Errorf("reading commit %s: %w", id, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing commit %s: %w", id, err)
	}

	l.cache.Add(id, &rec)
	return &rec, nil
}

// List returns every commit record, oldest first.
func (l *Log) List() ([]*Record, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("reading commits directory: %w", err)
	}

	var recs []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := l.Get(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(a, b int) bool {
		return recs[a].Timestamp.Before(recs[b].Timestamp)
	})
	return recs, nil
}

func (l *Log) append(rec *Record) error {
	path := l.recordPath(rec.ID)

	// An id collision is negligible but must never overwrite history.
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("commit id collision: %s", rec.ID)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stating record %s: %w", path, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling commit %s: %w", rec.ID, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing commit %s: %w", rec.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("persisting commit %s: %w", rec.ID, err)
	}
	return nil
}

func (l *Log) recordPath(id string) string {
	return filepath.Join(l.root, id+".json")
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
