package nlp

import (
	"testing"

	"nlp-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelThresholds(t *testing.T) {
	tests := []struct {
		compound float64
		want     string
	}{
		{0.05, "positive"},
		{-0.05, "negative"},
		{0.0, "neutral"},
		{0.0499, "neutral"},
		{-0.0499, "neutral"},
		{1.0, "positive"},
		{-1.0, "negative"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.compound), "compound %v", tt.compound)
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	a := NewAnalyzer()

	label, scores, tokens := a.Analyze("")
	assert.Equal(t, "neutral", label)
	assert.Equal(t, models.SentimentScores{Neg: 0, Neu: 1, Pos: 0, Compound: 0}, scores)
	assert.Equal(t, 0, tokens)

	label, _, tokens = a.Analyze("   \t ")
	assert.Equal(t, "neutral", label)
	assert.Equal(t, 0, tokens)
}

func TestAnalyzePolarity(t *testing.T) {
	a := NewAnalyzer()

	label, scores, tokens := a.Analyze("I love this, it is wonderful and great")
	assert.Equal(t, "positive", label)
	assert.GreaterOrEqual(t, scores.Compound, 0.05)
	assert.Equal(t, 8, tokens)

	label, scores, _ = a.Analyze("I hate this, it is horrible and terrible")
	assert.Equal(t, "negative", label)
	assert.LessOrEqual(t, scores.Compound, -0.05)
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := NewAnalyzer()
	text := "the weather is fine today"

	label1, scores1, tokens1 := a.Analyze(text)
	label2, scores2, tokens2 := a.Analyze(text)

	assert.Equal(t, label1, label2)
	assert.Equal(t, scores1, scores2)
	assert.Equal(t, tokens1, tokens2)
}

func TestAnnotate(t *testing.T) {
	a := NewAnalyzer()

	ann := a.Annotate("This is a genuinely delightful and happy sentence about good things")
	require.NotNil(t, ann)
	assert.Equal(t, "eng", ann.Language)
	assert.Contains(t, []string{"positive", "neutral", "negative"}, ann.Sentiment)
	assert.Equal(t, Label(ann.Scores.Compound), ann.Sentiment)
	assert.Equal(t, 11, ann.Tokens)
}
