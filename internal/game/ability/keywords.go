package ability

import (
	"regexp"
	"strconv"
	"strings"
)

// Keyword names recognized on creatures and in grant/anthem clauses.
const (
	KeywordFlying         = "flying"
	KeywordHaste          = "haste"
	KeywordVigilance      = "vigilance"
	KeywordTrample        = "trample"
	KeywordLifelink       = "lifelink"
	KeywordDeathtouch     = "deathtouch"
	KeywordMenace         = "menace"
	KeywordFirstStrike    = "first strike"
	KeywordDoubleStrike   = "double strike"
	KeywordFlash          = "flash"
	KeywordDefender       = "defender"
	KeywordReach          = "reach"
	KeywordHexproof       = "hexproof"
	KeywordIndestructible = "indestructible"
	KeywordProwess        = "prowess"
)

var knownKeywords = map[string]bool{
	KeywordFlying:         true,
	KeywordHaste:          true,
	KeywordVigilance:      true,
	KeywordTrample:        true,
	KeywordLifelink:       true,
	KeywordDeathtouch:     true,
	KeywordMenace:         true,
	KeywordFirstStrike:    true,
	KeywordDoubleStrike:   true,
	KeywordFlash:          true,
	KeywordDefender:       true,
	KeywordReach:          true,
	KeywordHexproof:       true,
	KeywordIndestructible: true,
	KeywordProwess:        true,
}

var (
	reminderPattern = regexp.MustCompile(`\([^)]*\)`)
	listSplit       = regexp.MustCompile(`\s*(?:,\s*and\s+|,\s*|\s+and\s+)\s*`)
	sentenceSplit   = regexp.MustCompile(`\.\s+`)
)

// IsKeyword reports whether word is a recognized keyword ability.
func IsKeyword(word string) bool {
	return knownKeywords[strings.ToLower(strings.TrimSpace(word))]
}

// ParseKeywordList parses "flying, vigilance, and haste" into its keywords.
// It returns nil unless every item is a recognized keyword.
func ParseKeywordList(list string) []string {
	list = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(list), "."))
	if list == "" {
		return nil
	}
	var out []string
	for _, item := range listSplit.Split(list, -1) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if !knownKeywords[item] {
			return nil
		}
		out = append(out, item)
	}
	return out
}

// Keywords extracts printed keyword abilities from rules text: lines that
// consist solely of comma separated keywords.
func Keywords(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(clean(text), "\n") {
		for _, kw := range ParseKeywordList(line) {
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

// StripReminders removes parenthesized reminder text.
func StripReminders(text string) string {
	return reminderPattern.ReplaceAllString(text, "")
}

// clean lowercases text and strips reminder text.
func clean(text string) string {
	text = StripReminders(strings.ToLower(text))
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "’", "'")
	return text
}

// sentences splits cleaned text into the units rules are matched against.
// Keyword lines contribute one unit per keyword so that "prowess" can be
// matched on its own.
func sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(clean(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if kws := ParseKeywordList(line); kws != nil {
			out = append(out, kws...)
			continue
		}
		for _, s := range sentenceSplit.Split(line, -1) {
			s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"x": 0,
}

// ParseNumber parses digits or English number words. Unknown words,
// including "x", count as zero.
func ParseNumber(word string) int {
	word = strings.TrimSpace(strings.ToLower(word))
	if n, ok := numberWords[word]; ok {
		return n
	}
	if n, err := strconv.Atoi(word); err == nil && n >= 0 {
		return n
	}
	return 0
}
