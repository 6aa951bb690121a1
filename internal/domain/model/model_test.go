package model

import (
	"testing"
	"time"
)

func TestContestWindowIsInclusive(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	c := &Contest{StartTime: start, EndTime: end}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{start.Add(-time.Nanosecond), false},
		{start, true},
		{start.Add(30 * time.Minute), true},
		{end, true},
		{end.Add(time.Nanosecond), false},
	}
	for _, tc := range cases {
		if got := c.IsActive(tc.at); got != tc.want {
			t.Errorf("IsActive(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestValidOption(t *testing.T) {
	q := &McqQuestion{Options: []string{"A", "B", "C"}}
	for idx, want := range map[int]bool{-1: false, 0: true, 2: true, 3: false} {
		if got := q.ValidOption(idx); got != want {
			t.Errorf("ValidOption(%d) = %v, want %v", idx, got, want)
		}
	}
}
