package model

import "time"

const (
	DefaultPoints        = 1
	DefaultTimeLimitMs   = 2000
	DefaultMemoryLimitKb = 262144
)

type McqQuestion struct {
	ID           string   `json:"id"`
	ContestID    string   `json:"contestId"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
	// Nil when the reader is not allowed to see the answer.
	CorrectOptionIndex *int      `json:"correctOptionIndex,omitempty"`
	Points             int       `json:"points"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ValidOption reports whether idx addresses one of the question's options.
func (q *McqQuestion) ValidOption(idx int) bool {
	return idx >= 0 && idx < len(q.Options)
}

type DsaProblem struct {
	ID            string     `json:"id"`
	ContestID     string     `json:"contestId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Tags          []string   `json:"tags"`
	Points        int        `json:"points"`
	TimeLimitMs   int        `json:"timeLimit"`
	MemoryLimitKb int        `json:"memoryLimit"`
	TestCases     []TestCase `json:"testCases,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type TestCase struct {
	ID             string `json:"id"`
	ProblemID      string `json:"problemId"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
	SortOrder      int    `json:"sortOrder"`
}
