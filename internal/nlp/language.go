package nlp

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// LanguageUnknown is recorded when detection fails, typically on text that is
// too short or too ambiguous to classify.
const LanguageUnknown = "unknown"

// DetectLanguage returns the ISO 639-3 code of the detected language, or
// LanguageUnknown when detection is unreliable. It never fails a record.
func DetectLanguage(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return LanguageUnknown
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return LanguageUnknown
	}
	return whatlanggo.LangToString(info.Lang)
}
