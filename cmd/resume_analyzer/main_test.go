package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-analyzer/internal/schemas"
	"github.com/jonathan/resume-analyzer/internal/types"
)

const sampleResume = `Jane Doe
jane.doe@example.com | (555) 123-4567

SUMMARY
I am a hardworking engineer and I think my work speaks for itself. I love my team.

EXPERIENCE
Senior Engineer, Acme Corp  Jan 2021 - Present
• Responsible for the payments API
• Reduced latency by 40% across 12 services

EDUCATION
B.S. Computer Science, State University  2014 - 2018

SKILLS
Languages: Go, Python, SQL`

const customRules = `version: 7
rules:
  - issue_code: MENTIONS_ACME
    handler_type: regex
    detection_config:
      pattern: 'Acme Corp'
    message: Former employer named
`

// isolate runs the test in an empty directory with no configuration in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{"DATABASE_URL", "GEMINI_API_KEY", "RESUME_ANALYZER_DATABASE_URL", "RESUME_ANALYZER_GEMINI_API_KEY"} {
		t.Setenv(k, "")
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI in-process and returns what it wrote to stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func issueCodes(issues []types.Issue) map[string]bool {
	codes := make(map[string]bool, len(issues))
	for _, is := range issues {
		codes[is.IssueCode] = true
	}
	return codes
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "resume.txt", sampleResume)

	out, err := execute(t, "", "analyze", "--format", "json", path)
	require.NoError(t, err)
	require.NoError(t, schemas.ValidateAnalysisResult([]byte(out)))

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.Issues)
	assert.True(t, issueCodes(result.Issues)["FIRST_PERSON_PRONOUNS"])
	assert.Equal(t, int64(0), result.RulesVersion)
}

func TestAnalyzeCommand_Text(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "resume.txt", sampleResume)

	out, err := execute(t, "", "analyze", "--verbose", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Score:")
	assert.Contains(t, out, "IMPORTANT")
	assert.Contains(t, out, "experience")
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	isolate(t)

	out, err := execute(t, sampleResume, "analyze", "-f", "json", "-")
	require.NoError(t, err)
	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.StructureSummary.HasExperience)
}

func TestAnalyzeCommand_RulesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "resume.txt", sampleResume)
	rulesPath := writeFile(t, dir, "rules.yaml", customRules)

	out, err := execute(t, "", "analyze", "-f", "json", "--rules", rulesPath, path)
	require.NoError(t, err)

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, issueCodes(result.Issues)["MENTIONS_ACME"])
	// File stores version by change generation, starting at 1.
	assert.Equal(t, int64(1), result.RulesVersion)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing file", args: []string{"analyze", "nope.txt"}, wantErr: "file not found"},
		{name: "bad format", args: []string{"analyze", "-f", "xml", "resume.txt"}, wantErr: "unknown format"},
		{name: "model without key", args: []string{"analyze", "--ai-features", "resume.txt"}, wantErr: "API key"},
		{name: "no argument", args: []string{"analyze"}, wantErr: "accepts 1 arg"},
		{name: "below threshold", args: []string{"analyze", "--fail-under", "101", "resume.txt"}, wantErr: "below 101"},
		{name: "missing config file", args: []string{"--config", "missing.yaml", "analyze", "resume.txt"}, wantErr: "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeFile(t, dir, "resume.txt", sampleResume)

			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScoreCommand(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "features.json", `{"bullet_count": 8, "quantified_bullet_count": 5, "has_email": true, "has_experience": true}`)
	bad := writeFile(t, dir, "bad.json", `{"bullet_count": -1}`)
	garbage := writeFile(t, dir, "garbage.json", `not json`)

	out, err := execute(t, "", "score", "-f", "json", good)
	require.NoError(t, err)
	var score types.Score
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.NotEmpty(t, score.Grade)

	out, err = execute(t, "", "score", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Score:")

	_, err = execute(t, "", "score", bad)
	assert.ErrorContains(t, err, "invalid features")

	_, err = execute(t, "", "score", garbage)
	assert.ErrorContains(t, err, "failed to parse features JSON")
}

func TestRulesCommands(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "rules.yaml", customRules)
	bad := writeFile(t, dir, "bad.yaml", "rules:\n  - issue_code: BAD\n    handler_type: regex\n    detection_config:\n      pattern: '('\n")

	out, err := execute(t, "", "rules", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rules valid")

	_, err = execute(t, "", "rules", "validate", bad)
	assert.ErrorContains(t, err, "1 of 1 rules are invalid")

	out, err = execute(t, "", "--rules", good, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MENTIONS_ACME")
	assert.Contains(t, out, "1 rules, version 1, 0 skipped")
}

func TestRulesList_DisabledByConfig(t *testing.T) {
	dir := isolate(t)
	cfg := writeFile(t, dir, "config.yaml", "use_rule_engine: false\n")

	_, err := execute(t, "", "--config", cfg, "rules", "list")
	assert.ErrorContains(t, err, "rule engine is disabled")

	t.Setenv("RESUME_ANALYZER_USE_RULE_ENGINE", "false")
	_, err = execute(t, "", "rules", "list")
	assert.ErrorContains(t, err, "rule engine is disabled")
}

func TestCatalogCommands(t *testing.T) {
	isolate(t)

	out, err := execute(t, "", "catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "MISSING_EMAIL")

	out, err = execute(t, "", "catalog", "show", "WEAK_VERB")
	require.NoError(t, err)
	var entry types.CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entry))
	assert.Equal(t, "WEAK_PHRASE", entry.IssueCode)

	_, err = execute(t, "", "catalog", "show", "NOT_A_CODE")
	assert.ErrorContains(t, err, "unknown issue code")
}

func TestDatabaseCommands_RequireURL(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "migrate", args: []string{"migrate"}},
		{name: "rules push", args: []string{"rules", "push", "rules.yaml"}},
		{name: "history", args: []string{"history", "resume.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeFile(t, dir, "rules.yaml", customRules)
			writeFile(t, dir, "resume.txt", sampleResume)

			_, err := execute(t, "", tt.args...)
			assert.ErrorContains(t, err, "database_url is required")
		})
	}
}
