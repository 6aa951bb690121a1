package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"
)

func TestCreateMcqSubmissionIsUniquePerPair(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const attempts = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.CreateMcqSubmission(ctx, &model.McqSubmission{
				ID:         "s" + string(rune('a'+i)),
				UserID:     "u1",
				QuestionID: "q1",
				ContestID:  "c1",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, common.ErrAlreadySubmitted):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 1 || rejected != attempts-1 {
		t.Fatalf("expected 1 success and %d rejections, got %d/%d", attempts-1, succeeded, rejected)
	}
}

func TestFindMcqInContestRejectsOtherContest(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	idx := 0
	if err := store.CreateMcq(ctx, &model.McqQuestion{ID: "q1", ContestID: "c1", Options: []string{"a", "b"}, CorrectOptionIndex: &idx, Points: 1}); err != nil {
		t.Fatalf("create mcq: %v", err)
	}
	if _, err := store.FindMcqInContest(ctx, "c2", "q1"); !errors.Is(err, common.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
	q, err := store.FindMcqInContest(ctx, "c1", "q1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	q.Options[0] = "mutated"
	again, _ := store.FindMcqInContest(ctx, "c1", "q1")
	if again.Options[0] != "a" {
		t.Fatalf("store leaked its slice: %v", again.Options)
	}
}

func TestCreateDsaSubmissionDiscardedWhenCallbackFails(t *testing.T) {
	store := NewStore()
	sub := &model.DsaSubmission{ID: "d1", UserID: "u1", Status: model.DsaStatusPending}
	boom := errors.New("queue down")
	err := store.CreateDsaSubmission(context.Background(), sub, func(context.Context) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if _, ok := store.DsaSubmission("d1"); ok {
		t.Fatalf("submission should not be stored")
	}
}

func TestContestScoresOrdersByPoints(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	subs := []model.McqSubmission{
		{ID: "1", UserID: "bob", QuestionID: "q1", ContestID: "c1", PointsEarned: 5},
		{ID: "2", UserID: "alice", QuestionID: "q1", ContestID: "c1", PointsEarned: 5},
		{ID: "3", UserID: "alice", QuestionID: "q2", ContestID: "c1", PointsEarned: 3},
		{ID: "4", UserID: "carol", QuestionID: "q9", ContestID: "c2", PointsEarned: 100},
		{ID: "5", UserID: "dave", QuestionID: "q1", ContestID: "c1", PointsEarned: 0},
	}
	for i := range subs {
		if err := store.CreateMcqSubmission(ctx, &subs[i]); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	entries, err := store.ContestScores(ctx, "c1", 10)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	want := []model.LeaderboardEntry{
		{Rank: 1, UserID: "alice", Points: 8},
		{Rank: 2, UserID: "bob", Points: 5},
		{Rank: 3, UserID: "dave", Points: 0},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), entries)
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entry %d: expected %+v, got %+v", i, want[i], entries[i])
		}
	}
}
