package service

import (
	"context"
	"log"
	"time"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"
)

// LeaderboardCache is the fast path for contest standings. Top reports ok=false
// when it holds nothing for the contest. Fill must not store a snapshot taken
// under a version that has since been invalidated.
type LeaderboardCache interface {
	Invalidate(ctx context.Context, contestID string) error
	Version(ctx context.Context, contestID string) (int64, error)
	Top(ctx context.Context, contestID string, n int) ([]model.LeaderboardEntry, bool, error)
	Fill(ctx context.Context, contestID string, version int64, entries []model.LeaderboardEntry) error
}

// LeaderboardService ranks contestees by total points. The store is the source
// of truth; the cache is optional.
type LeaderboardService struct {
	contestRepo    repository.ContestRepository
	submissionRepo repository.SubmissionRepository
	cache          LeaderboardCache
	size           int
	now            func() time.Time
}

func NewLeaderboardService(contestRepo repository.ContestRepository, submissionRepo repository.SubmissionRepository, cache LeaderboardCache, size int) *LeaderboardService {
	return &LeaderboardService{
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
		cache:          cache,
		size:           size,
		now:            time.Now,
	}
}

// Record marks the cached board stale after a committed submission. Failures
// only delay the cached board and are logged.
func (s *LeaderboardService) Record(ctx context.Context, contestID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, contestID); err != nil {
		log.Printf("WARN: %v", err)
	}
}

func (s *LeaderboardService) Get(ctx context.Context, caller model.Identity, contestID string) (*model.Leaderboard, error) {
	if caller.UserID == "" {
		return nil, common.ErrUnauthorized
	}
	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, err
	}

	entries, err := s.standings(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return &model.Leaderboard{ContestID: contestID, Entries: entries, UpdatedAt: s.now().UTC()}, nil
}

func (s *LeaderboardService) standings(ctx context.Context, contestID string) ([]model.LeaderboardEntry, error) {
	if s.cache == nil {
		return s.fromStore(ctx, contestID, s.size)
	}

	entries, ok, err := s.cache.Top(ctx, contestID, s.size)
	if err != nil {
		log.Printf("WARN: %v", err)
		return s.fromStore(ctx, contestID, s.size)
	}
	if ok {
		return entries, nil
	}

	version, err := s.cache.Version(ctx, contestID)
	if err != nil {
		log.Printf("WARN: %v", err)
		return s.fromStore(ctx, contestID, s.size)
	}
	all, err := s.fromStore(ctx, contestID, 0)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Fill(ctx, contestID, version, all); err != nil {
		log.Printf("WARN: %v", err)
	}
	if s.size > 0 && len(all) > s.size {
		all = all[:s.size]
	}
	return all, nil
}

func (s *LeaderboardService) fromStore(ctx context.Context, contestID string, limit int) ([]model.LeaderboardEntry, error) {
	entries, err := s.submissionRepo.ContestScores(ctx, contestID, limit)
	if err != nil {
		return nil, common.Errorf("failed to compute leaderboard: %w", err)
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries, nil
}
