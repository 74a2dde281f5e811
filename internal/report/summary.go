package report

import (
	"crypto/sha256"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/leetgrade/internal/heuristic"
)

// ComputeOverall returns the mean of the three scores rounded half up.
func ComputeOverall(s heuristic.Scores) int {
	mean := float64(s.Logic+s.Efficiency+s.Readability) / 3
	return int(math.Floor(mean + 0.5))
}

// ComputeSummary derives the overall score and rating from the heuristic scores.
func ComputeSummary(s heuristic.Scores) Summary {
	overall := ComputeOverall(s)
	var rating Rating
	switch {
	case overall >= 80:
		rating = RatingStrong
	case overall >= 60:
		rating = RatingFair
	default:
		rating = RatingWeak
	}
	return Summary{Overall: overall, Rating: rating}
}

// ToolName identifies reports produced by this tool.
const ToolName = "leetgrade"

// Analyzer builds reports. Now defaults to time.Now.
type Analyzer struct {
	Now     func() time.Time
	Version string
}

// Analyze scores the pair and returns a fully populated report. Every field is
// recomputed; nothing carries over between calls.
func (a Analyzer) Analyze(question, answer string) *Report {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	scores := heuristic.Score(question, answer)
	return &Report{
		ID:      uuid.NewString(),
		Tool:    ToolName,
		Version: a.Version,
		Record: Record{
			Time:        now().UTC().Truncate(time.Millisecond),
			Logic:       scores.Logic,
			Efficiency:  scores.Efficiency,
			Readability: scores.Readability,
			Question:    question,
			Answer:      answer,
		},
		Summary: ComputeSummary(scores),
		Input: Input{
			QuestionHash: Hash(question),
			AnswerHash:   Hash(answer),
		},
	}
}

// Hash returns the sha256 digest of text in "sha256:<hex>" form.
func Hash(text string) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256([]byte(text)))
}
