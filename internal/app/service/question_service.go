package service

import (
	"context"
	"strings"

	"contest_arena/internal/common"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"

	"github.com/google/uuid"
)

// QuestionService is the question bank. Any creator may add questions to any
// contest; ownership of the contest is not checked.
type QuestionService struct {
	contestRepo  repository.ContestRepository
	questionRepo repository.QuestionRepository
}

func NewQuestionService(contestRepo repository.ContestRepository, questionRepo repository.QuestionRepository) *QuestionService {
	return &QuestionService{contestRepo: contestRepo, questionRepo: questionRepo}
}

type AddMcqRequest struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex *int     `json:"correctOptionIndex"`
	Points             *int     `json:"points,omitempty"`
}

type TestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	IsHidden       bool   `json:"isHidden"`
}

type AddDsaProblemRequest struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Tags          []string          `json:"tags"`
	Points        *int              `json:"points,omitempty"`
	TimeLimitMs   *int              `json:"timeLimit,omitempty"`
	MemoryLimitKb *int              `json:"memoryLimit,omitempty"`
	TestCases     []TestCaseRequest `json:"testCases"`
}

type CreatedQuestion struct {
	ID        string `json:"id"`
	ContestID string `json:"contestId"`
}

func (s *QuestionService) AddMcq(ctx context.Context, caller model.Identity, contestID string, req AddMcqRequest) (*CreatedQuestion, error) {
	if err := security.RequireRole(caller, model.RoleCreator); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.QuestionText) == "" || len(req.Options) < 2 || req.CorrectOptionIndex == nil {
		return nil, common.Errorf("questionText, at least two options and correctOptionIndex are required: %w", common.ErrBadRequest)
	}
	points, err := positiveOrDefault(req.Points, model.DefaultPoints)
	if err != nil {
		return nil, err
	}

	q := &model.McqQuestion{
		ID:                 uuid.NewString(),
		ContestID:          contestID,
		QuestionText:       req.QuestionText,
		Options:            append([]string(nil), req.Options...),
		CorrectOptionIndex: req.CorrectOptionIndex,
		Points:             points,
	}
	if !q.ValidOption(*req.CorrectOptionIndex) {
		return nil, common.Errorf("correctOptionIndex %d out of range: %w", *req.CorrectOptionIndex, common.ErrBadRequest)
	}

	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, err
	}
	if err := s.questionRepo.CreateMcq(ctx, q); err != nil {
		return nil, common.Errorf("failed to create mcq: %w", err)
	}
	return &CreatedQuestion{ID: q.ID, ContestID: contestID}, nil
}

func (s *QuestionService) AddDsaProblem(ctx context.Context, caller model.Identity, contestID string, req AddDsaProblemRequest) (*CreatedQuestion, error) {
	if err := security.RequireRole(caller, model.RoleCreator); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || len(req.TestCases) == 0 {
		return nil, common.Errorf("title, description and at least one test case are required: %w", common.ErrBadRequest)
	}
	points, err := positiveOrDefault(req.Points, model.DefaultPoints)
	if err != nil {
		return nil, err
	}
	timeLimit, err := positiveOrDefault(req.TimeLimitMs, model.DefaultTimeLimitMs)
	if err != nil {
		return nil, err
	}
	memoryLimit, err := positiveOrDefault(req.MemoryLimitKb, model.DefaultMemoryLimitKb)
	if err != nil {
		return nil, err
	}

	problem := &model.DsaProblem{
		ID:            uuid.NewString(),
		ContestID:     contestID,
		Title:         req.Title,
		Description:   req.Description,
		Tags:          dedupeTags(req.Tags),
		Points:        points,
		TimeLimitMs:   timeLimit,
		MemoryLimitKb: memoryLimit,
	}
	for _, tc := range req.TestCases {
		if tc.Input == "" || tc.ExpectedOutput == "" {
			return nil, common.Errorf("test case input and expectedOutput are required: %w", common.ErrBadRequest)
		}
		problem.TestCases = append(problem.TestCases, model.TestCase{
			ID:             uuid.NewString(),
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			IsHidden:       tc.IsHidden,
		})
	}

	if _, err := s.contestRepo.FindContestByID(ctx, contestID); err != nil {
		return nil, err
	}
	if err := s.questionRepo.CreateDsaProblem(ctx, problem); err != nil {
		return nil, common.Errorf("failed to create dsa problem: %w", err)
	}
	return &CreatedQuestion{ID: problem.ID, ContestID: contestID}, nil
}

func positiveOrDefault(v *int, fallback int) (int, error) {
	if v == nil {
		return fallback, nil
	}
	if *v <= 0 {
		return 0, common.Errorf("value %d must be positive: %w", *v, common.ErrBadRequest)
	}
	return *v, nil
}

// dedupeTags keeps the first occurrence of each tag, as tags form a set.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
