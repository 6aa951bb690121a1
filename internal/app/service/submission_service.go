package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"contest_arena/internal/common"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"

	"github.com/google/uuid"
)

// JudgeDispatcher hands a persisted DSA submission to the external judge.
type JudgeDispatcher interface {
	Enqueue(ctx context.Context, submissionID string) error
}

type SubmissionService struct {
	contestRepo    repository.ContestRepository
	questionRepo   repository.QuestionRepository
	submissionRepo repository.SubmissionRepository
	judge          JudgeDispatcher
	leaderboard    *LeaderboardService
	now            func() time.Time
}

func NewSubmissionService(
	contestRepo repository.ContestRepository,
	questionRepo repository.QuestionRepository,
	submissionRepo repository.SubmissionRepository,
	judge JudgeDispatcher,
	leaderboard *LeaderboardService,
) *SubmissionService {
	return &SubmissionService{
		contestRepo:    contestRepo,
		questionRepo:   questionRepo,
		submissionRepo: submissionRepo,
		judge:          judge,
		leaderboard:    leaderboard,
		now:            time.Now,
	}
}

type SubmitMcqRequest struct {
	SelectedOptionIndex *int `json:"selectedOptionIndex"`
}

type SubmitDsaRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

type DsaSubmissionReceipt struct {
	SubmissionID string                    `json:"submissionId"`
	Status       model.DsaSubmissionStatus `json:"status"`
}

// SubmitMcqAnswer scores one answer. Each (user, question) pair is answered at
// most once; the store's uniqueness check decides concurrent races.
func (s *SubmissionService) SubmitMcqAnswer(ctx context.Context, caller model.Identity, contestID, questionID string, req SubmitMcqRequest) (*model.McqResult, error) {
	if err := security.RequireRole(caller, model.RoleContestee); err != nil {
		return nil, err
	}
	if req.SelectedOptionIndex == nil {
		return nil, common.Errorf("selectedOptionIndex is required: %w", common.ErrBadRequest)
	}

	if _, err := s.activeContest(ctx, contestID); err != nil {
		return nil, err
	}

	question, err := s.questionRepo.FindMcqInContest(ctx, contestID, questionID)
	if err != nil {
		return nil, err
	}
	selected := *req.SelectedOptionIndex
	if !question.ValidOption(selected) {
		return nil, common.Errorf("selectedOptionIndex %d out of range: %w", selected, common.ErrBadRequest)
	}

	already, err := s.submissionRepo.HasMcqSubmission(ctx, caller.UserID, question.ID)
	if err != nil {
		return nil, common.Errorf("failed to check previous submission: %w", err)
	}
	if already {
		return nil, common.ErrAlreadySubmitted
	}

	result := score(question, selected)
	sub := &model.McqSubmission{
		ID:                  uuid.NewString(),
		UserID:              caller.UserID,
		QuestionID:          question.ID,
		ContestID:           contestID,
		SelectedOptionIndex: selected,
		IsCorrect:           result.IsCorrect,
		PointsEarned:        result.PointsEarned,
	}
	if err := s.submissionRepo.CreateMcqSubmission(ctx, sub); err != nil {
		if errors.Is(err, common.ErrAlreadySubmitted) {
			return nil, common.ErrAlreadySubmitted
		}
		return nil, common.Errorf("failed to record submission: %w", err)
	}

	if s.leaderboard != nil {
		s.leaderboard.Record(ctx, contestID)
	}
	return &result, nil
}

// SubmitDsaSolution accepts code for judging. The record and the queue push
// succeed or fail together.
func (s *SubmissionService) SubmitDsaSolution(ctx context.Context, caller model.Identity, contestID, problemID string, req SubmitDsaRequest) (*DsaSubmissionReceipt, error) {
	if err := security.RequireRole(caller, model.RoleContestee); err != nil {
		return nil, err
	}
	language := strings.TrimSpace(req.Language)
	if language == "" || strings.TrimSpace(req.Code) == "" {
		return nil, common.Errorf("language and code are required: %w", common.ErrBadRequest)
	}

	if _, err := s.activeContest(ctx, contestID); err != nil {
		return nil, err
	}
	problem, err := s.questionRepo.FindDsaProblemInContest(ctx, contestID, problemID)
	if err != nil {
		return nil, err
	}

	sub := &model.DsaSubmission{
		ID:        uuid.NewString(),
		UserID:    caller.UserID,
		ProblemID: problem.ID,
		ContestID: contestID,
		Language:  language,
		Code:      req.Code,
		Status:    model.DsaStatusPending,
	}
	var enqueue func(context.Context) error
	if s.judge != nil {
		enqueue = func(ctx context.Context) error {
			return s.judge.Enqueue(ctx, sub.ID)
		}
	}
	if err := s.submissionRepo.CreateDsaSubmission(ctx, sub, enqueue); err != nil {
		return nil, common.Errorf("failed to accept dsa submission: %w", err)
	}
	return &DsaSubmissionReceipt{SubmissionID: sub.ID, Status: sub.Status}, nil
}

func (s *SubmissionService) activeContest(ctx context.Context, contestID string) (*model.Contest, error) {
	contest, err := s.contestRepo.FindContestByID(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if !contest.IsActive(s.now()) {
		return nil, common.ErrContestNotActive
	}
	return contest, nil
}

func score(q *model.McqQuestion, selected int) model.McqResult {
	if q.CorrectOptionIndex != nil && *q.CorrectOptionIndex == selected {
		return model.McqResult{IsCorrect: true, PointsEarned: q.Points}
	}
	return model.McqResult{IsCorrect: false, PointsEarned: 0}
}
