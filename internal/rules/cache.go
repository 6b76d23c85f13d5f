package rules

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-analyzer/internal/types"
)

//go:embed defaults.yaml
var defaultRules []byte

// DefaultsVersion is the version token of the built-in rule set.
const DefaultsVersion int64 = 0

// Store is an external rule store.
type Store interface {
	FetchAllRules(ctx context.Context) ([]types.DetectionRule, error)
	FetchCacheVersion(ctx context.Context) (int64, error)
}

// Snapshot is an immutable, compiled rule set identified by a version token.
type Snapshot struct {
	Version int64
	rules   []compiledRule
	// Skipped holds the compile error of every rule left out of the snapshot.
	Skipped []error
}

// Rules returns the rules of the snapshot in load order.
func (s *Snapshot) Rules() []types.DetectionRule {
	out := make([]types.DetectionRule, len(s.rules))
	for i, cr := range s.rules {
		out[i] = cr.rule
	}
	return out
}

// Len returns the number of compiled rules.
func (s *Snapshot) Len() int { return len(s.rules) }

// Cache serves rule snapshots. Readers load the current snapshot without locking; a load
// compiles a complete new snapshot and swaps it in one atomic store.
type Cache struct {
	store   Store
	logger  *zap.Logger
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// NewCache creates a cache primed with the built-in rules. store may be nil.
func NewCache(store Store, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{store: store, logger: logger}
	rules, err := Defaults()
	if err != nil {
		logger.Error("built-in rules failed to parse", zap.Error(err))
	}
	c.current.Store(c.build(DefaultsVersion, rules))
	return c
}

// Snapshot returns the current snapshot.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Version returns the version token of the current snapshot.
func (c *Cache) Version() int64 {
	return c.Snapshot().Version
}

// Load fetches every rule from the store and replaces the snapshot. On a store error the
// current snapshot is kept.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *Cache) loadLocked(ctx context.Context) error {
	version, err := c.store.FetchCacheVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rule cache version: %w", err)
	}
	rules, err := c.store.FetchAllRules(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rules: %w", err)
	}
	snap := c.build(version, rules)
	c.current.Store(snap)
	c.logger.Info("rule cache loaded",
		zap.Int64("version", version),
		zap.Int("rules", snap.Len()),
		zap.Int("skipped", len(snap.Skipped)))
	return nil
}

// RefreshIfStale reloads only when the store reports a version other than the cached one.
func (c *Cache) RefreshIfStale(ctx context.Context) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	version, err := c.store.FetchCacheVersion(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch rule cache version: %w", err)
	}
	if version == c.Version() {
		return false, nil
	}
	if err := c.loadLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Replace compiles rules into a new snapshot with the given version and swaps it in.
func (c *Cache) Replace(version int64, rules []types.DetectionRule) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := c.build(version, rules)
	c.current.Store(snap)
	return snap
}

func (c *Cache) build(version int64, rules []types.DetectionRule) *Snapshot {
	snap := &Snapshot{Version: version}
	for _, r := range rules {
		cr, err := compile(r)
		if err != nil {
			c.logger.Warn("skipping malformed rule",
				zap.String("issue_code", r.IssueCode),
				zap.String("handler_type", string(r.HandlerType)),
				zap.Error(err))
			snap.Skipped = append(snap.Skipped, err)
			continue
		}
		snap.rules = append(snap.rules, cr)
	}
	return snap
}

// File is the YAML layout of a rule file.
type File struct {
	Version int64                 `yaml:"version"`
	Rules   []types.DetectionRule `yaml:"rules"`
}

// ParseFile decodes a YAML rule file. Unknown keys are rejected.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}
	return &f, nil
}

// Defaults returns the built-in rules.
func Defaults() ([]types.DetectionRule, error) {
	f, err := ParseFile(defaultRules)
	if err != nil {
		return nil, err
	}
	return f.Rules, nil
}

// Validate compiles every rule and returns one error per rule that would be skipped.
func Validate(rules []types.DetectionRule) []error {
	var errs []error
	for _, r := range rules {
		if _, err := compile(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
