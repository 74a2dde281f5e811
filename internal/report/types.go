// Package report defines the result record produced by an analysis.
package report

import (
	"time"

	"github.com/dshills/leetgrade/internal/heuristic"
)

// Report is the top-level output object.
type Report struct {
	ID      string `json:"id"`
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Record
	Summary Summary `json:"summary"`
	Input   Input   `json:"input"`
	Grade   *Grade  `json:"grade,omitempty"`
	Meta    *Meta   `json:"meta,omitempty"`
}

// Record is the analysis result: the three heuristic scores, the inputs they
// were computed from, and when.
type Record struct {
	Time        time.Time `json:"time"`
	Logic       int       `json:"logic"`
	Efficiency  int       `json:"efficiency"`
	Readability int       `json:"readability"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
}

// Scores returns the heuristic scores held by the record.
func (r Record) Scores() heuristic.Scores {
	return heuristic.Scores{
		Logic:       r.Logic,
		Efficiency:  r.Efficiency,
		Readability: r.Readability,
	}
}

// Summary holds the derived overall score and rating.
type Summary struct {
	Overall int    `json:"overall"`
	Rating  Rating `json:"rating"`
}

// Input describes where the question and answer came from.
type Input struct {
	QuestionSource string `json:"question_source,omitempty"`
	QuestionHash   string `json:"question_hash"`
	AnswerSource   string `json:"answer_source,omitempty"`
	AnswerHash     string `json:"answer_hash"`
	Rubric         string `json:"rubric,omitempty"`
}

// Grade is a rubric grade returned by a model. Each criterion is in [0, 10].
type Grade struct {
	Logic       float64 `json:"Logic"`
	Efficiency  float64 `json:"Efficiency"`
	Readability float64 `json:"Readability"`
}

// Meta records the model and settings used for the grade.
type Meta struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}
