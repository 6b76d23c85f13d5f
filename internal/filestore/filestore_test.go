package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/catalog"
	"github.com/jonathan/resume-analyzer/internal/rules"
	"github.com/jonathan/resume-analyzer/internal/types"
)

var (
	_ rules.Store   = (*Store)(nil)
	_ catalog.Store = (*Store)(nil)
)

const rulesYAML = `version: 7
rules:
  - issue_code: PLACEHOLDER_TEXT
    handler_type: regex
    detection_config:
      pattern: '\bTODO\b'
    severity: critical
    message: Placeholder text
`

const catalogYAML = `entries:
  - issue_code: PLACEHOLDER_TEXT
    display_name: Placeholder
    severity: critical
    weight: 9
    category: Red Flags
    can_auto_fix: false
legacy:
  TODO_TEXT: PLACEHOLDER_TEXT
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestFetchAllRules_FromFile(t *testing.T) {
	dir := t.TempDir()
	s := New(writeFile(t, dir, "rules.yaml", rulesYAML), "", nil)

	got, err := s.FetchAllRules(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PLACEHOLDER_TEXT", got[0].IssueCode)
	assert.Equal(t, types.HandlerRegex, got[0].HandlerType)
	assert.Equal(t, `\bTODO\b`, got[0].DetectionConfig["pattern"])
}

func TestFetchAllRules_EmptyPathServesDefaults(t *testing.T) {
	s := New("", "", nil)
	got, err := s.FetchAllRules(context.Background())
	require.NoError(t, err)
	want, err := rules.Defaults()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFetchAllRules_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "absent.yaml")},
		{"unknown key", writeFile(t, dir, "bad.yaml", "rules:\n  - issue_code: X\n    handler: regex\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.path, "", nil).FetchAllRules(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFetchCatalog_FromFile(t *testing.T) {
	dir := t.TempDir()
	s := New("", writeFile(t, dir, "catalog.yaml", catalogYAML), nil)
	ctx := context.Background()

	entries, err := s.FetchAllCatalogEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 9, entries[0].Weight)

	legacy, err := s.FetchLegacyMapping(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TODO_TEXT": "PLACEHOLDER_TEXT"}, legacy)
}

func TestFetchCatalog_EmptyPath(t *testing.T) {
	s := New("", "", nil)
	entries, err := s.FetchAllCatalogEntries(context.Background())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestFetch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New("", "", nil)
	_, err := s.FetchAllRules(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.FetchCacheVersion(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBump_AdvancesVersion(t *testing.T) {
	s := New("", "", nil)
	v, err := s.FetchCacheVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, int64(2), s.Bump())
}

func TestCache_LoadsFromStore(t *testing.T) {
	dir := t.TempDir()
	s := New(writeFile(t, dir, "rules.yaml", rulesYAML), "", nil)
	cache := rules.NewCache(s, nil)

	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, int64(1), cache.Version())
	assert.Equal(t, 1, cache.Snapshot().Len())

	refreshed, err := cache.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.False(t, refreshed)

	s.Bump()
	refreshed, err = cache.RefreshIfStale(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, int64(2), cache.Version())
}

func TestWatch_BumpsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", rulesYAML)
	s := New(path, "", nil)

	changed := make(chan int64, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, 20*time.Millisecond, func(v int64) { changed <- v })
	}()

	// Give the watcher time to start
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML+"\n"), 0o600))

	select {
	case v := <-changed:
		assert.GreaterOrEqual(t, v, int64(2))
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(writeFile(t, dir, "rules.yaml", rulesYAML), "", nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Watch(ctx, 10*time.Millisecond, nil) }()
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "notes.txt", "unrelated")
	time.Sleep(150 * time.Millisecond)
	cancel()

	v, err := s.FetchCacheVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestWatch_NoFiles(t *testing.T) {
	err := New("", "", nil).Watch(context.Background(), 0, nil)
	assert.Error(t, err)
}
