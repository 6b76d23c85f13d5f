// Package filestore serves detection rules and catalog entries from YAML files. A watcher
// bumps the version token whenever either file changes so rule caches reload on their next
// staleness check.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jonathan/resume-analyzer/internal/catalog"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// DefaultDebounce is the quiet period after a file event before the version is bumped.
const DefaultDebounce = 250 * time.Millisecond

// Store reads rules and catalog entries from disk on every fetch.
type Store struct {
	rulesPath   string
	catalogPath string
	logger      *zap.Logger
	generation  atomic.Int64
}

// New creates a store. Either path may be empty: an empty rules path serves the built-in
// rules and an empty catalog path serves no overrides.
func New(rulesPath, catalogPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{rulesPath: rulesPath, catalogPath: catalogPath, logger: logger}
	s.generation.Store(1)
	return s
}

// FetchAllRules parses the rules file.
func (s *Store) FetchAllRules(ctx context.Context) ([]types.DetectionRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.rulesPath == "" {
		return rules.Defaults()
	}
	data, err := os.ReadFile(s.rulesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	f, err := rules.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.rulesPath, err)
	}
	return f.Rules, nil
}

// FetchCacheVersion returns the change generation, starting at 1.
func (s *Store) FetchCacheVersion(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.generation.Load(), nil
}

// FetchAllCatalogEntries parses the entries of the catalog file.
func (s *Store) FetchAllCatalogEntries(ctx context.Context) ([]types.CatalogEntry, error) {
	f, err := s.readCatalog(ctx)
	if err != nil || f == nil {
		return nil, err
	}
	return f.Entries, nil
}

// FetchLegacyMapping parses the legacy aliases of the catalog file.
func (s *Store) FetchLegacyMapping(ctx context.Context) (map[string]string, error) {
	f, err := s.readCatalog(ctx)
	if err != nil || f == nil {
		return nil, err
	}
	return f.Legacy, nil
}

func (s *Store) readCatalog(ctx context.Context) (*catalog.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.catalogPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	f, err := catalog.ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.catalogPath, err)
	}
	return f, nil
}

// Bump advances the version token and returns the new value.
func (s *Store) Bump() int64 {
	return s.generation.Add(1)
}

// Watch bumps the version when the rules or catalog file changes, then calls onChange. It
// watches the parent directories so files replaced by rename are still seen. Watch blocks
// until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration, onChange func(version int64)) error {
	targets := make(map[string]bool)
	for _, p := range []string{s.rulesPath, s.catalogPath} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		targets[abs] = true
	}
	if len(targets) == 0 {
		return errors.New("no files to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for p := range targets {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	fire := func() {
		v := s.Bump()
		s.logger.Info("rule files changed", zap.Int64("version", v))
		if onChange != nil {
			onChange(v)
		}
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Op) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !targets[abs] {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, fire)
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
