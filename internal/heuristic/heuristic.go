// Package heuristic computes the deterministic logic, efficiency, and readability scores.
package heuristic

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxQuestionTokens caps how many question tokens take part in the logic score.
const MaxQuestionTokens = 30

// Scores holds the three heuristic results, each in [0, 100].
type Scores struct {
	Logic       int `json:"logic"`
	Efficiency  int `json:"efficiency"`
	Readability int `json:"readability"`
}

var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "a": {}, "an": {}, "to": {},
	"for": {}, "of": {}, "in": {}, "on": {}, "and": {},
	"or": {}, "with": {}, "by": {}, "that": {}, "this": {},
}

var (
	nonWordPattern    = regexp.MustCompile(`[\W_]+`)
	complexityPattern = regexp.MustCompile(`(?i)\bO\(|time complexity|space complexity`)
	commentPattern    = regexp.MustCompile(`//|/\*|#|<!--`)
)

// IsStopWord reports whether w is excluded from scoring.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Tokenize lowercases text, strips non-word characters, and drops stop-words.
// Token order and duplicates are preserved.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := nonWordPattern.ReplaceAllString(strings.ToLower(text), " ")
	var tokens []string
	for _, w := range strings.Fields(cleaned) {
		if IsStopWord(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// LogicScore returns the percentage of the first MaxQuestionTokens question
// tokens that appear anywhere in the answer.
func LogicScore(question, answer string) int {
	qWords := Tokenize(question)
	if len(qWords) > MaxQuestionTokens {
		qWords = qWords[:MaxQuestionTokens]
	}
	aWords := make(map[string]struct{})
	for _, w := range Tokenize(answer) {
		aWords[w] = struct{}{}
	}
	if len(qWords) == 0 || len(aWords) == 0 {
		return 0
	}

	matches := 0
	for _, w := range qWords {
		if _, ok := aWords[w]; ok {
			matches++
		}
	}
	score := roundHalfUp(float64(matches) / float64(len(qWords)) * 100)
	return min(100, score)
}

// EfficiencyScore returns 90 when the answer discusses complexity, otherwise
// buckets it by non-empty line count.
func EfficiencyScore(answer string) int {
	if answer == "" {
		return 0
	}
	if complexityPattern.MatchString(answer) {
		return 90
	}
	switch n := len(nonEmptyLines(answer)); {
	case n <= 10:
		return 80
	case n <= 30:
		return 60
	default:
		return 40
	}
}

// ReadabilityScore starts at 50, rewards comment markers and short lines,
// penalizes very long lines, and clamps to [0, 100].
//
// Line length is measured in Unicode code points, not UTF-16 code units or
// bytes, so a line of astral-plane characters such as emoji counts each one
// once.
func ReadabilityScore(answer string) int {
	if answer == "" {
		return 0
	}

	lines := nonEmptyLines(answer)
	total := 0
	for _, l := range lines {
		total += utf8.RuneCountInString(l)
	}
	avg := float64(total) / float64(max(1, len(lines)))

	score := 50
	if commentPattern.MatchString(answer) {
		score += 25
	}
	if avg < 80 {
		score += 15
	}
	if avg > 140 {
		score -= 10
	}
	return max(0, min(100, score))
}

// Score runs all three heuristics.
func Score(question, answer string) Scores {
	return Scores{
		Logic:       LogicScore(question, answer),
		Efficiency:  EfficiencyScore(answer),
		Readability: ReadabilityScore(answer),
	}
}

// nonEmptyLines splits on newline and drops empty strings. Whitespace-only
// lines are kept.
func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
