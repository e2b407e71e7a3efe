// Package crm holds the in-memory cold-call state: the profile inbox, the
// append-only call-result log, and the statistics derived from them.
package crm

import "time"

// Outcome values that feed the named stat buckets. Anything else is kept in
// the log and counts toward Total only.
const (
	OutcomeWon      = "won"
	OutcomeLost     = "lost"
	OutcomeFollowUp = "follow-up"
)

// Profile is a contact record waiting in the inbox for an outbound call.
// FirstName and LastName are the only required fields; the rest render as
// "N/A" in chat output when empty. ID, ReceivedAt and ReceivedFrom are
// ingestion metadata, never part of the submitted payload.
type Profile struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Company     string `json:"company,omitempty"`
	Position    string `json:"position,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`

	ReceivedAt   time.Time `json:"receivedAt"`
	ReceivedFrom string    `json:"receivedFrom"`
}

// Sentiment counts response signals collected during a single call.
type Sentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// CallResult records the outcome of one call attempt. Duration is whole
// seconds, already clamped non-negative at the ingest boundary.
type CallResult struct {
	Outcome    string    `json:"outcome"`
	ScriptName string    `json:"scriptName"`
	Duration   int       `json:"duration"`
	Stats      Sentiment `json:"stats"`

	ReceivedAt   time.Time `json:"receivedAt"`
	ReceivedFrom string    `json:"receivedFrom"`
}

// CallStats is the aggregate view over the whole call-result log.
type CallStats struct {
	Total           int     `json:"total"`
	Won             int     `json:"won"`
	Lost            int     `json:"lost"`
	FollowUp        int     `json:"followUp"`
	WinRate         float64 `json:"winRate"`
	AvgDurationSecs int     `json:"avgDurationSeconds"`
	TotalPositive   int     `json:"totalPositive"`
	TotalNegative   int     `json:"totalNegative"`
	TotalNeutral    int     `json:"totalNeutral"`
}

// SentimentScore is derived on demand rather than stored: positive minus
// negative responses across the log.
func (s CallStats) SentimentScore() int {
	return s.TotalPositive - s.TotalNegative
}
