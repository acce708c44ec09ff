package model

import "time"

// MissedAnswer is recorded as the operator's answer when a bag leaves the belt.
const MissedAnswer = "MISSED"

// UnknownAnswer is recorded when the selected category has no name.
const UnknownAnswer = "N/A"

// CategoryStat counts correct answers per category.
type CategoryStat struct {
	Hits  int `json:"hits"`
	Total int `json:"total"`
}

// WrongAnswer describes one incorrectly graded bag.
type WrongAnswer struct {
	BaggageID int    `json:"baggageId"`
	Code      string `json:"code"`
	Correct   string `json:"correct"`
	User      string `json:"user"`
}

// Summary is the final result of a session.
type Summary struct {
	Operator      string               `json:"operator,omitempty"`
	Score         int                  `json:"score"`
	Hits          int                  `json:"hits"`
	FalseAlarms   int                  `json:"fars"`
	Efficiency    float64              `json:"efficiency"`
	Credit        int                  `json:"credit"`
	CategoryStats map[int]CategoryStat `json:"categoryStats"`
	WrongAnswers  []WrongAnswer        `json:"wrongAnswers"`
	TimeUsed      time.Duration        `json:"timeUsed"`

	ReactionMean   float64 `json:"reactionMean"`
	ReactionStdDev float64 `json:"reactionStdDev"`

	Area         int       `json:"area"`
	Corrective   bool      `json:"corrective"`
	CorrectiveID string    `json:"correctiveId,omitempty"`
	Reason       string    `json:"reason"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// Graded reports how many bags were graded.
func (s Summary) Graded() int {
	return s.Hits + s.FalseAlarms
}
