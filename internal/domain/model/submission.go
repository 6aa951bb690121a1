package model

import "time"

type McqSubmission struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	QuestionID          string    `json:"questionId"`
	ContestID           string    `json:"contestId"`
	SelectedOptionIndex int       `json:"selectedOptionIndex"`
	IsCorrect           bool      `json:"isCorrect"`
	PointsEarned        int       `json:"pointsEarned"`
	CreatedAt           time.Time `json:"createdAt"`
}

// McqResult is what a contestee learns about their answer.
type McqResult struct {
	IsCorrect    bool `json:"isCorrect"`
	PointsEarned int  `json:"pointsEarned"`
}

type DsaSubmissionStatus string

const (
	DsaStatusPending DsaSubmissionStatus = "Pending"
)

// DsaSubmission is accepted here and judged by an external service that consumes
// the judge queue.
type DsaSubmission struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	ProblemID string              `json:"problemId"`
	ContestID string              `json:"contestId"`
	Language  string              `json:"language"`
	Code      string              `json:"-"`
	Status    DsaSubmissionStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}
