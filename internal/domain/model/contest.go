package model

import "time"

type Contest struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatorID   string    `json:"creatorId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsActive reports whether t falls inside the closed window [StartTime, EndTime].
func (c *Contest) IsActive(t time.Time) bool {
	return !t.Before(c.StartTime) && !t.After(c.EndTime)
}

// ContestDetails is a contest together with the questions it owns.
type ContestDetails struct {
	Contest
	Mcqs        []McqQuestion `json:"mcqs"`
	DsaProblems []DsaProblem  `json:"dsaProblems"`
}
