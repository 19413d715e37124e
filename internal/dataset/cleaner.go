package dataset

import (
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	urlRe        = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	emailRe      = regexp.MustCompile(`(?i)\S+@\S+\.\S+`)
	ctrlRe       = regexp.MustCompile(`[\r\n\t]+`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
	dashRunRe    = regexp.MustCompile(`-{2,}`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// typeVocabulary holds the canonical categories of the dataset. Free-form
// values are matched case-insensitively; anything else passes through
// lower-cased.
var typeVocabulary = []string{
	"age",
	"ethnicity",
	"gender",
	"religion",
	"other_cyberbullying",
	"not_cyberbullying",
}

// CleanText strips URLs, email addresses and control characters from s and
// collapses runs of whitespace to a single space.
func CleanText(s string) string {
	s = urlRe.ReplaceAllString(s, " ")
	s = emailRe.ReplaceAllString(s, " ")
	s = ctrlRe.ReplaceAllString(s, " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeType maps a free-form type value onto the fixed vocabulary.
func NormalizeType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
		return "unknown"
	}
	for _, v := range typeVocabulary {
		if strings.EqualFold(s, v) {
			return v
		}
	}
	return strings.ToLower(s)
}

// NormalizeLabel lower-cases a label and replaces whitespace with dashes.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
		return "unknown"
	}
	s = strings.ToLower(s)
	s = spaceRe.ReplaceAllString(s, "-")
	return dashRunRe.ReplaceAllString(s, "-")
}

// DeriveID computes a stable post identifier from the cleaned text. The hash
// is masked to stay positive so ids survive a round trip through JSON and the
// index mapping's long type.
func DeriveID(text string) int64 {
	return int64(xxhash.Sum64String(text) & math.MaxInt64)
}
