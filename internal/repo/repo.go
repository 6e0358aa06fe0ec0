// Package repo provides the explicit repository handle. All paths are
// resolved from the root at construction time; nothing here depends on
// the process working directory.
package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"minivc/internal/commit"
	"minivc/internal/config"
	"minivc/internal/object"
	"minivc/internal/restore"
	"minivc/internal/staging"
	"minivc/internal/vcerrors"
)

const (
	markerDir  = ".minivc"
	commitsDir = "commits"
	objectsDir = "objects"
	indexFile  = "index.json"
	configFile = "config.json"
)

// Repository wires the object store, staging index, commit log, and
// restore engine for one initialized repository root.
type Repository struct {
	Root    string
	Dir     string // the .minivc directory
	Config  *config.Config
	Objects *object.Store
	Staging *staging.Index
	Commits *commit.Log
	Logger  *zap.Logger

	engine *restore.Engine
}

// Init creates the repository layout under root: the marker directory,
// the commits and objects stores, an empty staging record, and the
// config record. Idempotent — existing state is left untouched.
func Init(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root %s: %w", root, err)
	}

	dir := filepath.Join(absRoot, markerDir)
	for _, d := range []string{
		filepath.Join(dir, commitsDir),
		filepath.Join(dir, objectsDir),
	} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	idx := staging.NewIndex(absRoot, filepath.Join(dir, indexFile), zap.NewNop())
	if err := idx.Init(); err != nil {
		return err
	}

	cfgPath := filepath.Join(dir, configFile)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Default().Save(cfgPath); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("stating config: %w", err)
	}

	return nil
}

// Open validates that root holds an initialized repository and wires up
// its components. Every operation entry point goes through here, so an
// uninitialized root halts before any state is touched.
func Open(root string, logger *zap.Logger) (*Repository, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	dir := filepath.Join(absRoot, markerDir)
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vcerrors.Uninitialized(absRoot)
		}
		return nil, fmt.Errorf("stating %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, vcerrors.Uninitialized(absRoot)
	}

	cfg, err := LoadConfig(absRoot)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = config.Default()
	}

	objects, err := object.NewStore(filepath.Join(dir, objectsDir), logger)
	if err != nil {
		return nil, err
	}

	idx := staging.NewIndex(absRoot, filepath.Join(dir, indexFile), logger)

	log, err := commit.NewLog(absRoot, filepath.Join(dir, commitsDir), objects, idx, logger)
	if err != nil {
		return nil, err
	}

	return &Repository{
		Root:    absRoot,
		Dir:     dir,
		Config:  cfg,
		Objects: objects,
		Staging: idx,
		Commits: log,
		Logger:  logger,
		engine:  restore.NewEngine(absRoot, log, objects, logger),
	}, nil
}

// LoadConfig reads the repository config under root without opening the
// full repository. Callers that only need configuration (the CLI picks
// its log level before building components) use this; missing-file
// errors pass through untouched for os.IsNotExist checks.
func LoadConfig(root string) (*config.Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	return config.Load(filepath.Join(absRoot, markerDir, configFile))
}

// Stage upserts a staging entry for path.
func (r *Repository) Stage(path string) (staging.Entry, error) {
	return r.Staging.Stage(path)
}

// Staged returns the current staging entries.
func (r *Repository) Staged() ([]staging.Entry, error) {
	return r.Staging.List()
}

// Commit snapshots the staging index into a new commit record.
func (r *Repository) Commit(message string) (*commit.Record, error) {
	return r.Commits.Commit(message)
}

// Restore writes the files of commit id back onto the working tree and
// returns the count actually restored.
func (r *Repository) Restore(id string) (int, error) {
	return r.engine.Restore(id)
}

// Log returns all commit records, oldest first.
func (r *Repository) Log() ([]*commit.Record, error) {
	return r.Commits.List()
}

// Close flushes the logger. The repository holds no other resources;
// all durable state is written synchronously by each operation.
func (r *Repository) Close() error {
	return r.Logger.Sync()
}
