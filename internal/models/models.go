package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// SentimentScores holds the component scores produced by the VADER analyzer.
// Compound is a single signed polarity summary in [-1, 1].
type SentimentScores struct {
	Neg      float64 `bson:"neg" json:"neg"`
	Neu      float64 `bson:"neu" json:"neu"`
	Pos      float64 `bson:"pos" json:"pos"`
	Compound float64 `bson:"compound" json:"compound"`
}

// Post is a cleaned, deduplicated record. IDPost is derived from the cleaned
// text, so re-running preprocessing on the same input produces the same ids.
// The annotation fields are absent until the enricher has processed the post.
type Post struct {
	OID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	IDPost int64              `bson:"id_post" json:"id_post"`
	Text   string             `bson:"text" json:"text"`
	Type   string             `bson:"type" json:"type"`
	Label  string             `bson:"label" json:"label"`
	Date   string             `bson:"date,omitempty" json:"date,omitempty"`
	Source string             `bson:"source,omitempty" json:"source,omitempty"`

	Language        string           `bson:"language,omitempty" json:"language,omitempty"`
	Sentiment       string           `bson:"sentiment,omitempty" json:"sentiment,omitempty"`
	SentimentScores *SentimentScores `bson:"sentiment_scores,omitempty" json:"sentiment_scores,omitempty"`
	SentimentTokens *int             `bson:"sentiment_tokens,omitempty" json:"sentiment_tokens,omitempty"`
}

// Enriched reports whether all four annotation fields are present. The
// enricher skips posts for which this is true unless forced.
func (p *Post) Enriched() bool {
	return p.Language != "" && p.Sentiment != "" && p.SentimentScores != nil && p.SentimentTokens != nil
}

// Annotation is the result of running language detection and sentiment
// analysis over a single post's text.
type Annotation struct {
	Language  string
	Sentiment string
	Scores    SentimentScores
	Tokens    int
}

// SetAnnotation copies annotation results onto the post.
func (p *Post) SetAnnotation(ann *Annotation) {
	p.Language = ann.Language
	p.Sentiment = ann.Sentiment
	scores := ann.Scores
	tokens := ann.Tokens
	p.SentimentScores = &scores
	p.SentimentTokens = &tokens
}

// PreprocessReport summarizes a normalizer run.
type PreprocessReport struct {
	RowsRead   int `json:"rows_read"`
	Malformed  int `json:"malformed"`
	Duplicates int `json:"duplicates"`
	Kept       int `json:"kept"`
}

// LoadReport summarizes a loader run. DuplicatesRemoved counts documents
// deleted by the pre-pass that clears id_post collisions before the unique
// index is applied.
type LoadReport struct {
	DuplicatesRemoved int64 `json:"duplicates_removed"`
	Inserted          int   `json:"inserted"`
	Updated           int   `json:"updated"`
	Skipped           int   `json:"skipped"`
}

// EnrichReport summarizes an enricher run.
type EnrichReport struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// IndexReport summarizes a projector run. FailedIDs lists the document ids
// rejected inside otherwise successful bulk batches.
type IndexReport struct {
	Indexed   int64    `json:"indexed"`
	Failed    int64    `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnalyzeResponse is the on-demand analysis result for a single text.
type AnalyzeResponse struct {
	Text            string          `json:"text"`
	Language        string          `json:"language"`
	Sentiment       string          `json:"sentiment"`
	SentimentScores SentimentScores `json:"sentiment_scores"`
	SentimentTokens int             `json:"sentiment_tokens"`
}
