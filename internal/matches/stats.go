package matches

import "time"

// RecentWindow bounds RecentUploads.
const RecentWindow = 30 * 24 * time.Hour

// StatusCounts is the per-bucket breakdown shown on the dashboard.
type StatusCounts struct {
	GoodMatch   int `json:"goodMatch"`
	FairMatch   int `json:"fairMatch"`
	PoorMatch   int `json:"poorMatch"`
	NotAnalyzed int `json:"notAnalyzed"`
}

func (c *StatusCounts) add(s Status) {
	switch s {
	case StatusGoodMatch:
		c.GoodMatch++
	case StatusFairMatch:
		c.FairMatch++
	case StatusPoorMatch:
		c.PoorMatch++
	default:
		c.NotAnalyzed++
	}
}

// Stats summarizes one owner's records.
type Stats struct {
	TotalResumes  int          `json:"totalResumes"`
	AverageScore  float64      `json:"averageScore"`
	HighestScore  int          `json:"highestScore"`
	LowestScore   int          `json:"lowestScore"`
	RecentUploads int          `json:"recentUploads"`
	StatusCounts  StatusCounts `json:"statusCounts"`
}

// ComputeStats aggregates records that all belong to one owner. With no
// records every numeric field is zero.
func ComputeStats(records []MatchRecord, now time.Time) Stats {
	var st Stats
	if len(records) == 0 {
		return st
	}

	cutoff := now.Add(-RecentWindow)
	sum := 0
	st.HighestScore = records[0].MatchScore
	st.LowestScore = records[0].MatchScore
	for _, rec := range records {
		sum += rec.MatchScore
		if rec.MatchScore > st.HighestScore {
			st.HighestScore = rec.MatchScore
		}
		if rec.MatchScore < st.LowestScore {
			st.LowestScore = rec.MatchScore
		}
		if !rec.CreatedAt.Before(cutoff) {
			st.RecentUploads++
		}
		st.StatusCounts.add(Classify(rec.MatchScore))
	}
	st.TotalResumes = len(records)
	st.AverageScore = float64(sum) / float64(len(records))
	return st
}
