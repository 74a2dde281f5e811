package report

import "strings"

// Rating buckets the overall score.
type Rating string

const (
	RatingStrong Rating = "STRONG"
	RatingFair   Rating = "FAIR"
	RatingWeak   Rating = "WEAK"
)

func (r Rating) Valid() bool {
	switch r {
	case RatingStrong, RatingFair, RatingWeak:
		return true
	}
	return false
}

// order returns a sort key (lower = better).
func (r Rating) order() int {
	switch r {
	case RatingStrong:
		return 0
	case RatingFair:
		return 1
	case RatingWeak:
		return 2
	default:
		return 3
	}
}

// ParseRating accepts a rating name in any case.
func ParseRating(s string) (Rating, bool) {
	r := Rating(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// AtOrBelow reports whether r is the same as or worse than threshold.
func (r Rating) AtOrBelow(threshold Rating) bool {
	if !r.Valid() || !threshold.Valid() {
		return false
	}
	return r.order() >= threshold.order()
}
