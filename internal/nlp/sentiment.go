package nlp

import (
	"strings"

	"nlp-pipeline/internal/models"

	"github.com/jonreiter/govader"
)

// Fixed thresholds mapping the compound score to a categorical label.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// Analyzer wraps the VADER sentiment analyzer.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer creates a new sentiment analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze scores the text and returns the categorical label, the component
// scores, and the number of tokens considered. Empty text scores neutral.
func (a *Analyzer) Analyze(text string) (string, models.SentimentScores, int) {
	if strings.TrimSpace(text) == "" {
		return "neutral", models.SentimentScores{Neu: 1}, 0
	}

	s := a.vader.PolarityScores(text)
	scores := models.SentimentScores{
		Neg:      s.Negative,
		Neu:      s.Neutral,
		Pos:      s.Positive,
		Compound: s.Compound,
	}
	return Label(scores.Compound), scores, len(strings.Fields(text))
}

// Annotate runs language detection and sentiment analysis on one text.
func (a *Analyzer) Annotate(text string) *models.Annotation {
	label, scores, tokens := a.Analyze(text)
	return &models.Annotation{
		Language:  DetectLanguage(text),
		Sentiment: label,
		Scores:    scores,
		Tokens:    tokens,
	}
}

// Label maps a compound score to positive, negative or neutral.
func Label(compound float64) string {
	switch {
	case compound >= positiveThreshold:
		return "positive"
	case compound <= negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
