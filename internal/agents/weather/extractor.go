// internal/agents/weather/extractor.go
package weather

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mock-agents/internal/agent"
)

// cityPatterns are tried in order; the first capture wins.
var cityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bweather\s+in\s+(.+)`),
	regexp.MustCompile(`(?i)\bweather\s+for\s+(.+)`),
	regexp.MustCompile(`(?i)\bweather\b.*?\bin\s+(.+)`),
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s'-]+`)

var fillerWords = map[string]bool{
	"weather": true, "weather's": true, "forecast": true, "temperature": true,
	"today": true, "tonight": true, "tomorrow": true, "now": true, "currently": true,
	"this": true, "week": true, "weekend": true, "morning": true, "afternoon": true, "evening": true,
	"what": true, "what's": true, "whats": true, "how": true, "how's": true,
	"is": true, "the": true, "like": true, "in": true, "for": true, "at": true, "of": true,
	"me": true, "tell": true, "give": true, "show": true, "about": true, "please": true,
	"current": true, "it": true, "will": true, "be": true, "going": true, "to": true, "a": true,
	"and": true, "outside": true, "there": true, "get": true, "check": true, "can": true,
	"you": true, "i": true, "do": true, "does": true, "look": true, "looks": true,
	"rain": true, "raining": true, "snow": true, "snowing": true, "sunny": true,
	"hot": true, "cold": true, "warm": true, "should": true, "need": true, "umbrella": true,
	"next": true, "later": true, "day": true, "night": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "april": true, "june": true, "july": true,
	"september": true, "october": true, "november": true, "december": true,
}

// Extract resolves the city named in text. The intent is always forecast
// and the key falls back to defaultCity, so the query is always resolved.
func Extract(text, defaultCity string) agent.Query {
	return agent.Query{
		Key:    extractCity(text, defaultCity),
		Intent: agent.IntentForecast,
	}
}

// extractCity tries each pattern's capture, then the whole text with filler
// removed, and settles on defaultCity only when every candidate is too short.
func extractCity(text, defaultCity string) string {
	for _, p := range cityPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if city := trimFiller(cleanWords(m[1])); isCity(city) {
				return titleCase(city)
			}
		}
	}
	if city := dropFiller(cleanWords(text)); isCity(city) {
		return titleCase(city)
	}
	return defaultCity
}

func isCity(s string) bool {
	return utf8.RuneCountInString(s) >= 2
}

// Casers are stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English, cases.NoLower).String(s)
}

// cleanWords strips punctuation and splits on whitespace.
func cleanWords(s string) []string {
	return strings.Fields(punctuation.ReplaceAllString(s, " "))
}

func isFiller(word string) bool {
	return fillerWords[strings.ToLower(strings.Trim(word, "'-"))]
}

// trimFiller drops filler words from both ends of a captured phrase.
func trimFiller(words []string) string {
	start, end := 0, len(words)
	for start < end && isFiller(words[start]) {
		start++
	}
	for end > start && isFiller(words[end-1]) {
		end--
	}
	return strings.Join(words[start:end], " ")
}

// dropFiller removes every filler word.
func dropFiller(words []string) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !isFiller(w) {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}
