package ai

import "strings"

// errorMarkers is the versioned list of substrings that mark a provider
// response as error-shaped. Backends surface failures as free text in
// both English and Russian, so both sets are kept.
var errorMarkers = []string{
	// English
	"unavailable",
	"error",
	"invalid key",
	"insufficient funds",
	"rate limit",
	"authentication",
	"ssl",
	"certificate",
	"timeout",
	"connection",
	// Russian
	"недоступен",
	"ошибка",
	"ключ",
	"средств",
	"лимит",
	"таймаут",
	// UI failure glyph some backends echo back
	"❌",
}

// MarkerClassifier classifies responses by case-insensitive substring
// matching against errorMarkers.
type MarkerClassifier struct{}

var _ ResponseClassifier = MarkerClassifier{}

// NewMarkerClassifier creates the default classifier.
func NewMarkerClassifier() MarkerClassifier {
	return MarkerClassifier{}
}

// IsError reports whether the response looks like a failure. Empty
// responses are errors.
func (MarkerClassifier) IsError(response string) bool {
	if strings.TrimSpace(response) == "" {
		return true
	}
	lower := strings.ToLower(response)
	for _, marker := range errorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
