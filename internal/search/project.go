package search

import (
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Accepted source field names in priority order. Older collections stored the
// post body under "texte" and the categories capitalized; both shapes project
// to the same index schema.
var (
	textFields  = []string{"text", "texte"}
	typeFields  = []string{"type", "Type"}
	labelFields = []string{"label", "Label"}
)

// Document is the search-index projection of a stored post. Absent fields are
// omitted rather than defaulted, so they never pollute search results.
type Document struct {
	IDPost    *int64  `json:"id_post,omitempty"`
	Text      string  `json:"text,omitempty"`
	Type      string  `json:"type,omitempty"`
	Label     string  `json:"label,omitempty"`
	Language  string  `json:"language,omitempty"`
	Sentiment string  `json:"sentiment,omitempty"`
	Score     float64 `json:"score"`
	Date      string  `json:"date,omitempty"`
	Source    string  `json:"source,omitempty"`
}

// Project flattens a stored document into its indexed form and selects its
// identity: id_post when present and non-null, else the document's own _id.
// The fallback keeps re-projection of legacy documents stable per document.
func Project(doc bson.M) (string, *Document) {
	out := &Document{
		Text:      firstString(doc, textFields),
		Type:      strings.ToLower(firstString(doc, typeFields)),
		Label:     strings.ToLower(firstString(doc, labelFields)),
		Language:  stringValue(doc["language"]),
		Sentiment: stringValue(doc["sentiment"]),
		Date:      stringValue(doc["date"]),
		Source:    stringValue(doc["source"]),
	}

	if scores, ok := subdocument(doc["sentiment_scores"]); ok {
		if compound, ok := floatValue(scores["compound"]); ok {
			out.Score = compound
		}
	}

	if id, ok := intValue(doc["id_post"]); ok {
		out.IDPost = &id
		return strconv.FormatInt(id, 10), out
	}
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		return oid.Hex(), out
	}
	return fmt.Sprint(doc["_id"]), out
}

// subdocument normalizes the two shapes the driver may decode an embedded
// document into.
func subdocument(v interface{}) (bson.M, bool) {
	switch d := v.(type) {
	case bson.M:
		return d, true
	case bson.D:
		m := make(bson.M, len(d))
		for _, e := range d {
			m[e.Key] = e.Value
		}
		return m, true
	default:
		return nil, false
	}
}

func firstString(doc bson.M, names []string) string {
	for _, name := range names {
		if s, ok := doc[name].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
