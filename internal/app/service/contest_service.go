package service

import (
	"context"
	"strings"
	"time"

	"contest_arena/internal/common"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
)

type ContestService struct {
	contestRepo  repository.ContestRepository
	questionRepo repository.QuestionRepository
}

func NewContestService(contestRepo repository.ContestRepository, questionRepo repository.QuestionRepository) *ContestService {
	return &ContestService{contestRepo: contestRepo, questionRepo: questionRepo}
}

type CreateContestRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

func (s *ContestService) CreateContest(ctx context.Context, caller model.Identity, req CreateContestRequest) (*model.Contest, error) {
	if err := security.RequireRole(caller, model.RoleCreator); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return nil, common.Errorf("title, startTime and endTime are required: %w", common.ErrBadRequest)
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, common.Errorf("endTime must be after startTime: %w", common.ErrBadRequest)
	}

	contest := &model.Contest{
		ID:          uuid.NewString(),
		Title:       title,
		Description: req.Description,
		CreatorID:   caller.UserID,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
	}
	contest.Slug = contestSlug(title, contest.ID)

	if err := s.contestRepo.CreateContest(ctx, contest); err != nil {
		return nil, common.Errorf("failed to create contest: %w", err)
	}
	return contest, nil
}

// GetContest resolves ref as a contest id or, failing that, a slug. Only
// creators see answers and hidden test cases.
func (s *ContestService) GetContest(ctx context.Context, caller model.Identity, ref string) (*model.ContestDetails, error) {
	if caller.UserID == "" {
		return nil, common.ErrUnauthorized
	}

	var (
		contest *model.Contest
		err     error
	)
	if _, parseErr := uuid.Parse(ref); parseErr == nil {
		contest, err = s.contestRepo.FindContestByID(ctx, ref)
	} else {
		contest, err = s.contestRepo.FindContestBySlug(ctx, ref)
	}
	if err != nil {
		return nil, err
	}

	details := &model.ContestDetails{Contest: *contest}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mcqs, err := s.questionRepo.ListMcqsByContest(gctx, contest.ID)
		if err != nil {
			return common.Errorf("failed to load mcqs: %w", err)
		}
		details.Mcqs = mcqs
		return nil
	})
	g.Go(func() error {
		problems, err := s.questionRepo.ListDsaProblemsByContest(gctx, contest.ID)
		if err != nil {
			return common.Errorf("failed to load dsa problems: %w", err)
		}
		details.DsaProblems = problems
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if caller.Role != model.RoleCreator {
		redactForContestee(details)
	}
	return details, nil
}

func redactForContestee(details *model.ContestDetails) {
	for i := range details.Mcqs {
		details.Mcqs[i].CorrectOptionIndex = nil
	}
	for i := range details.DsaProblems {
		visible := details.DsaProblems[i].TestCases[:0]
		for _, tc := range details.DsaProblems[i].TestCases {
			if !tc.IsHidden {
				visible = append(visible, tc)
			}
		}
		details.DsaProblems[i].TestCases = visible
	}
}

// contestSlug derives a readable, unique slug; the id suffix keeps two contests
// with the same title apart.
func contestSlug(title, id string) string {
	base := slug.Make(title)
	if base == "" {
		base = "contest"
	}
	return base + "-" + id[:8]
}
