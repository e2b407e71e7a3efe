package crm

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeDuration is returned by FormatDuration for inputs below zero.
var ErrNegativeDuration = errors.New("negative duration")

// ComputeStats derives the aggregate view from a call-result log. It is a
// pure function over its input: same log, same stats.
//
// Bucket counts use case-sensitive exact matches on the outcome literals, so
// unknown outcomes contribute to Total but to none of Won/Lost/FollowUp.
// WinRate is won/total*100 rounded to one decimal, AvgDurationSecs the
// truncated mean; both are defined as 0 for an empty log rather than a
// division by zero.
func ComputeStats(results []CallResult) CallStats {
	st := CallStats{Total: len(results)}
	if st.Total == 0 {
		return st
	}

	var totalDuration int
	for _, r := range results {
		switch r.Outcome {
		case OutcomeWon:
			st.Won++
		case OutcomeLost:
			st.Lost++
		case OutcomeFollowUp:
			st.FollowUp++
		}
		totalDuration += r.Duration
		st.TotalPositive += r.Stats.Positive
		st.TotalNegative += r.Stats.Negative
		st.TotalNeutral += r.Stats.Neutral
	}

	st.WinRate = math.Round(float64(st.Won)/float64(st.Total)*1000) / 10
	st.AvgDurationSecs = totalDuration / st.Total
	return st
}

// FormatDuration renders whole seconds as "M:SS" (125 -> "2:05"). Negative
// input is rejected outright instead of producing a malformed string.
func FormatDuration(seconds int) (string, error) {
	if seconds < 0 {
		return "", fmt.Errorf("%w: %d", ErrNegativeDuration, seconds)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60), nil
}
