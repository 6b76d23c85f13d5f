package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	reply  string
	err    error
	prompt string
	tier   ModelTier
}

func (f *fakeClient) GenerateJSON(_ context.Context, prompt string, tier ModelTier) (string, error) {
	f.prompt = prompt
	f.tier = tier
	return f.reply, f.err
}

func (f *fakeClient) Close() error { return nil }

func TestExtract_NormalizesReply(t *testing.T) {
	client := &fakeClient{reply: "```json\n" + `{
		"bullet_count": 12,
		"quantified_bullet_count": "7",
		"has_email": true,
		"has_phone": "false",
		"avg_bullets_per_job": 4,
		"confidence": "high"
	}` + "\n```"}
	e := NewFeatureExtractor(client, nil)

	f, err := e.Extract(context.Background(), "Jane Doe\n• Shipped things")
	require.NoError(t, err)
	assert.Equal(t, 12, f.BulletCount)
	assert.Equal(t, 7, f.QuantifiedBulletCount)
	assert.True(t, f.HasEmail)
	assert.False(t, f.HasPhone)
	assert.InDelta(t, 4, f.AvgBulletsPerJob, 1e-9)
	assert.Equal(t, TierStandard, client.tier)
	assert.Contains(t, client.prompt, "• Shipped things")
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name   string
		client Client
	}{
		{"no client", nil},
		{"client error", &fakeClient{err: errors.New("quota exceeded")}},
		{"not json", &fakeClient{reply: "I cannot help with that"}},
		{"negative count", &fakeClient{reply: `{"bullet_count": -1}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeatureExtractor(tt.client, nil).Extract(context.Background(), "text")
			assert.Error(t, err)
		})
	}
}

func TestBuildFeaturePrompt_ListsEveryFeature(t *testing.T) {
	prompt := BuildFeaturePrompt("résumé body")
	for _, name := range []string{
		`"bullet_count": integer`,
		`"has_summary": boolean`,
		`"avg_bullets_per_job": number`,
		`"short_tenure_count": integer`,
	} {
		assert.Contains(t, prompt, name)
	}
	assert.Contains(t, prompt, "résumé body")
}

func TestBuildFeaturePrompt_TruncatesInput(t *testing.T) {
	long := strings.Repeat("é", MaxInputRunes+50)
	prompt := BuildFeaturePrompt(long)
	assert.NotContains(t, prompt, long)
	assert.Contains(t, prompt, strings.Repeat("é", MaxInputRunes))
}

type scriptedClient struct {
	replies []string
	prompts []string
}

func (s *scriptedClient) GenerateJSON(_ context.Context, prompt string, _ ModelTier) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("no more replies")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func (s *scriptedClient) Close() error { return nil }

func TestExtract_RetriesRejectedReplyOnce(t *testing.T) {
	client := &scriptedClient{replies: []string{`{"bullet_count": -4}`, `{"bullet_count": 4}`}}

	f, err := NewFeatureExtractor(client, nil).Extract(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, 4, f.BulletCount)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "not a valid feature record")
	assert.True(t, strings.HasPrefix(client.prompts[1], client.prompts[0]))
}

func TestExtract_GivesUpAfterRetry(t *testing.T) {
	client := &scriptedClient{replies: []string{"nope", "still nope", `{"bullet_count": 1}`}}

	_, err := NewFeatureExtractor(client, nil).Extract(context.Background(), "text")
	require.Error(t, err)
	assert.Len(t, client.prompts, 2)
}

func TestBuildFeaturePrompt_DocumentNotExpanded(t *testing.T) {
	prompt := BuildFeaturePrompt("Skills: {{.Fields}}")
	assert.Contains(t, prompt, "Skills: {{.Fields}}")
}
