package matches

// Status is the display bucket derived from a match score.
type Status string

const (
	StatusNotAnalyzed Status = "Not Analyzed"
	StatusPoorMatch   Status = "Poor Match"
	StatusFairMatch   Status = "Fair Match"
	StatusGoodMatch   Status = "Good Match"
)

const (
	FairThreshold = 50
	GoodThreshold = 70
)

// Classify maps a score to its status bucket. A score of zero or less means
// the resume was never meaningfully scored.
func Classify(score int) Status {
	switch {
	case score <= 0:
		return StatusNotAnalyzed
	case score < FairThreshold:
		return StatusPoorMatch
	case score < GoodThreshold:
		return StatusFairMatch
	default:
		return StatusGoodMatch
	}
}
