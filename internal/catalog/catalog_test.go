package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-analyzer/internal/types"
)

type fakeStore struct {
	entries []types.CatalogEntry
	legacy  map[string]string
	err     error
}

func (f *fakeStore) FetchAllCatalogEntries(context.Context) ([]types.CatalogEntry, error) {
	return f.entries, f.err
}

func (f *fakeStore) FetchLegacyMapping(context.Context) (map[string]string, error) {
	return f.legacy, f.err
}

var scoringCategories = map[string]bool{
	"Content Quality":        true,
	"Language & Clarity":     true,
	"Formatting":             true,
	"Completeness":           true,
	"Professional Standards": true,
	"Red Flags":              true,
}

func TestDefaults_WellFormed(t *testing.T) {
	f, err := Defaults()
	require.NoError(t, err)
	require.NotEmpty(t, f.Entries)

	seen := map[string]bool{}
	for _, e := range f.Entries {
		t.Run(e.IssueCode, func(t *testing.T) {
			assert.False(t, seen[e.IssueCode], "duplicate entry")
			assert.True(t, e.Severity.Valid())
			assert.Positive(t, e.Weight)
			assert.True(t, scoringCategories[e.Category], "category %q", e.Category)
			assert.NotEmpty(t, e.DisplayName)
			assert.NotEmpty(t, e.FixGuidance)
		})
		seen[e.IssueCode] = true
	}
	for old, canonical := range f.Legacy {
		assert.True(t, seen[canonical], "legacy %s points at unknown %s", old, canonical)
		assert.False(t, seen[old], "legacy code %s is also canonical", old)
	}
}

func TestEnrich_KnownCode(t *testing.T) {
	c := New(nil, nil)
	is := c.Enrich(types.NewIssue("MISSING_EMAIL", "no email"))
	assert.Equal(t, types.SeverityCritical, is.Severity)
	assert.Equal(t, 10, is.Weight)
	assert.Equal(t, "Completeness", is.Category)
	assert.Equal(t, "Contact", is.Subcategory)
	assert.Equal(t, "Missing email address", is.DisplayName)
	assert.NotEmpty(t, is.FixGuidance)
	assert.Equal(t, "no email", is.Message)
}

func TestEnrich_CatalogOverridesDetectorValues(t *testing.T) {
	c := New(nil, nil)
	raw := types.NewIssue("EMPLOYMENT_GAP", "gap").AutoFix(map[string]any{"months": 4})
	raw.Severity = types.SeverityPolish
	raw.Weight = 99
	is := c.Enrich(raw)
	assert.Equal(t, types.SeverityConsider, is.Severity)
	assert.Equal(t, 4, is.Weight)
	assert.False(t, is.CanAutoFix)
	assert.Equal(t, map[string]any{"months": 4}, is.AutoFixData)
}

func TestEnrich_UnknownCodeDefaults(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	c := New(nil, zap.New(core))

	raw := types.NewIssue("FOO_BAR", "custom")
	raw.CanAutoFix = true
	is := c.Enrich(raw)

	assert.Equal(t, types.SeverityConsider, is.Severity)
	assert.Equal(t, 5, is.Weight)
	assert.Equal(t, "Other", is.Category)
	assert.Equal(t, "Foo Bar", is.DisplayName)
	assert.False(t, is.CanAutoFix)
	require.Equal(t, 1, logs.FilterMessage("unknown issue code").Len())
	assert.Equal(t, "FOO_BAR", logs.All()[0].ContextMap()["issue_code"])
}

func TestEnrich_LegacyAlias(t *testing.T) {
	c := New(nil, nil)
	tests := []struct {
		legacy    string
		canonical string
	}{
		{"WEAK_VERB", "WEAK_PHRASE"},
		{"NO_METRICS", "MISSING_QUANTIFICATION"},
		{"PRONOUN_USAGE", "FIRST_PERSON_PRONOUNS"},
		{"GAP_IN_EMPLOYMENT", "EMPLOYMENT_GAP"},
		{"MISSING_CONTACT_EMAIL", "MISSING_EMAIL"},
	}
	for _, tt := range tests {
		t.Run(tt.legacy, func(t *testing.T) {
			assert.Equal(t, tt.canonical, c.Canonical(tt.legacy))
			is := c.Enrich(types.NewIssue(tt.legacy, "x"))
			assert.Equal(t, tt.canonical, is.IssueCode)
			assert.NotEqual(t, DefaultCategory, is.Category)

			e, ok := c.Lookup(tt.legacy)
			require.True(t, ok)
			assert.Equal(t, tt.canonical, e.IssueCode)
		})
	}
	assert.Equal(t, "WEAK_PHRASE", c.Canonical("WEAK_PHRASE"))
}

func TestRefresh_StoreOverridesDefaults(t *testing.T) {
	store := &fakeStore{
		entries: []types.CatalogEntry{
			{IssueCode: "MISSING_EMAIL", DisplayName: "No email", Severity: types.SeverityImportant, Weight: 7, Category: "Completeness"},
			{IssueCode: "CUSTOM_CODE", DisplayName: "Custom", Severity: types.SeverityPolish, Weight: 1, Category: "Formatting"},
			{IssueCode: "BROKEN", Severity: "urgent", Weight: 1},
		},
		legacy: map[string]string{"OLD_CUSTOM": "CUSTOM_CODE"},
	}
	c := New(store, nil)
	require.NoError(t, c.Refresh(context.Background()))

	e, ok := c.Lookup("MISSING_EMAIL")
	require.True(t, ok)
	assert.Equal(t, types.SeverityImportant, e.Severity)
	assert.Equal(t, 7, e.Weight)

	is := c.Enrich(types.NewIssue("OLD_CUSTOM", "x"))
	assert.Equal(t, "CUSTOM_CODE", is.IssueCode)
	assert.Equal(t, types.SeverityPolish, is.Severity)

	_, ok = c.Lookup("BROKEN")
	assert.False(t, ok)
	_, ok = c.Lookup("PLACEHOLDER_TEXT")
	assert.True(t, ok, "built-in entries survive a refresh")
	assert.Equal(t, "WEAK_PHRASE", c.Canonical("WEAK_VERB"))
}

func TestRefresh_StoreErrorKeepsSnapshot(t *testing.T) {
	c := New(&fakeStore{err: errors.New("down")}, nil)
	before := c.current.Load()
	err := c.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.Same(t, before, c.current.Load())
}

func TestRefresh_NilStore(t *testing.T) {
	assert.NoError(t, New(nil, nil).Refresh(context.Background()))
}

func TestEntries_Sorted(t *testing.T) {
	entries := New(nil, nil).Entries()
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].IssueCode, entries[i].IssueCode)
	}
}

func TestEnrichAll_ConcurrentWithReplace(t *testing.T) {
	c := New(nil, nil)
	issues := []types.Issue{types.NewIssue("MISSING_PHONE", "a"), types.NewIssue("WEAK_VERB", "b")}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.Replace([]types.CatalogEntry{{IssueCode: "MISSING_PHONE", Severity: types.SeverityPolish, Weight: i + 1, Category: "Completeness"}}, nil)
				return
			}
			out := c.EnrichAll(issues)
			assert.Len(t, out, 2)
			assert.Equal(t, "WEAK_PHRASE", out[1].IssueCode)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, "MISSING_PHONE", issues[0].IssueCode, "input is not mutated")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Foo Bar", DisplayName("FOO_BAR"))
	assert.Equal(t, "X", DisplayName("X"))
	assert.Equal(t, "", DisplayName(""))
}

func TestParseFile_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseFile([]byte("entries:\n  - issue_code: A\n    sev: critical\n"))
	assert.Error(t, err)
}
