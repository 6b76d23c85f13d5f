// Package catalog holds the canonical metadata of every issue code and enriches detector
// output with it.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-analyzer/internal/types"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Metadata assigned to codes the catalog does not know.
const (
	DefaultSeverity = types.SeverityConsider
	DefaultWeight   = 5
	DefaultCategory = "Other"
)

// Store is an external catalog store.
type Store interface {
	FetchAllCatalogEntries(ctx context.Context) ([]types.CatalogEntry, error)
	FetchLegacyMapping(ctx context.Context) (map[string]string, error)
}

// File is the YAML layout of a catalog file.
type File struct {
	Entries []types.CatalogEntry `yaml:"entries"`
	Legacy  map[string]string    `yaml:"legacy"`
}

// ParseFile decodes a YAML catalog file. Unknown keys are rejected.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return &f, nil
}

// Defaults returns the built-in catalog.
func Defaults() (*File, error) {
	return ParseFile(defaultCatalog)
}

type snapshot struct {
	entries map[string]types.CatalogEntry
	legacy  map[string]string
}

// Catalog serves issue metadata. Lookups read the current snapshot without locking;
// Refresh and Replace build a complete snapshot and publish it in one atomic store.
type Catalog struct {
	store    Store
	logger   *zap.Logger
	defaults *File

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// New creates a catalog primed with the built-in entries. store may be nil.
func New(store Store, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{store: store, logger: logger}
	f, err := Defaults()
	if err != nil {
		logger.Error("built-in catalog failed to parse", zap.Error(err))
		f = &File{}
	}
	c.defaults = f
	c.current.Store(c.build(nil, nil))
	return c
}

// Refresh reloads entries and legacy aliases from the store. Store entries override the
// built-in ones by code. On a store error the current snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.store.FetchAllCatalogEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalog entries: %w", err)
	}
	legacy, err := c.store.FetchLegacyMapping(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch legacy mapping: %w", err)
	}
	snap := c.build(entries, legacy)
	c.current.Store(snap)
	c.logger.Info("catalog refreshed",
		zap.Int("entries", len(snap.entries)),
		zap.Int("legacy", len(snap.legacy)))
	return nil
}

// Replace installs entries and legacy aliases on top of the built-in catalog.
func (c *Catalog) Replace(entries []types.CatalogEntry, legacy map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Store(c.build(entries, legacy))
}

func (c *Catalog) build(entries []types.CatalogEntry, legacy map[string]string) *snapshot {
	snap := &snapshot{
		entries: make(map[string]types.CatalogEntry, len(c.defaults.Entries)+len(entries)),
		legacy:  make(map[string]string, len(c.defaults.Legacy)+len(legacy)),
	}
	add := func(e types.CatalogEntry) {
		e.IssueCode = strings.TrimSpace(e.IssueCode)
		if e.IssueCode == "" || !e.Severity.Valid() {
			c.logger.Warn("skipping malformed catalog entry",
				zap.String("issue_code", e.IssueCode),
				zap.String("severity", string(e.Severity)))
			return
		}
		snap.entries[e.IssueCode] = e
	}
	for _, e := range c.defaults.Entries {
		add(e)
	}
	for _, e := range entries {
		add(e)
	}
	for old, canonical := range c.defaults.Legacy {
		snap.legacy[old] = canonical
	}
	for old, canonical := range legacy {
		snap.legacy[old] = canonical
	}
	return snap
}

// Canonical maps a legacy code to its current code. Other codes are returned unchanged.
func (c *Catalog) Canonical(code string) string {
	return c.current.Load().canonical(code)
}

func (s *snapshot) canonical(code string) string {
	if to, ok := s.legacy[code]; ok {
		return to
	}
	return code
}

// Lookup returns the entry for code after legacy resolution.
func (c *Catalog) Lookup(code string) (types.CatalogEntry, bool) {
	snap := c.current.Load()
	e, ok := snap.entries[snap.canonical(code)]
	return e, ok
}

// Entries returns every entry sorted by code.
func (c *Catalog) Entries() []types.CatalogEntry {
	snap := c.current.Load()
	out := make([]types.CatalogEntry, 0, len(snap.entries))
	for _, e := range snap.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueCode < out[j].IssueCode })
	return out
}

// Enrich fills severity, weight, display and fix metadata of is from the catalog.
// Unknown codes get the default metadata and are logged.
func (c *Catalog) Enrich(is types.Issue) types.Issue {
	return c.enrich(c.current.Load(), is)
}

// EnrichAll enriches every issue against a single snapshot.
func (c *Catalog) EnrichAll(issues []types.Issue) []types.Issue {
	snap := c.current.Load()
	out := make([]types.Issue, len(issues))
	for i, is := range issues {
		out[i] = c.enrich(snap, is)
	}
	return out
}

func (c *Catalog) enrich(snap *snapshot, is types.Issue) types.Issue {
	is.IssueCode = snap.canonical(is.IssueCode)
	e, ok := snap.entries[is.IssueCode]
	if !ok {
		c.logger.Warn("unknown issue code", zap.String("issue_code", is.IssueCode))
		is.Severity = DefaultSeverity
		is.Weight = DefaultWeight
		is.Category = DefaultCategory
		is.Subcategory = ""
		is.DisplayName = DisplayName(is.IssueCode)
		is.CanAutoFix = false
		return is
	}
	is.Severity = e.Severity
	is.Weight = e.Weight
	is.Category = e.Category
	is.Subcategory = e.Subcategory
	is.DisplayName = e.DisplayName
	if is.DisplayName == "" {
		is.DisplayName = DisplayName(e.IssueCode)
	}
	is.FixGuidance = e.FixGuidance
	is.CanAutoFix = e.CanAutoFix
	return is
}

// DisplayName turns an issue code into title case, e.g. "FOO_BAR" to "Foo Bar".
func DisplayName(code string) string {
	parts := strings.Split(strings.ToLower(code), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
