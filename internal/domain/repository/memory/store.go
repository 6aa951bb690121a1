// Package memory holds in-process implementations of the repository
// interfaces, used when no database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"
	"contest_arena/internal/domain/repository"
)

var (
	_ repository.UserRepository       = (*Store)(nil)
	_ repository.ContestRepository    = (*Store)(nil)
	_ repository.QuestionRepository   = (*Store)(nil)
	_ repository.SubmissionRepository = (*Store)(nil)
)

type pairKey struct {
	userID     string
	questionID string
}

// Store keeps every table in maps behind one lock.
type Store struct {
	mu sync.RWMutex

	users        map[string]model.User
	usersByEmail map[string]string

	contests       map[string]model.Contest
	contestsBySlug map[string]string

	mcqs        map[string]model.McqQuestion
	dsaProblems map[string]model.DsaProblem

	mcqSubmissions map[pairKey]model.McqSubmission
	dsaSubmissions map[string]model.DsaSubmission

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:          make(map[string]model.User),
		usersByEmail:   make(map[string]string),
		contests:       make(map[string]model.Contest),
		contestsBySlug: make(map[string]string),
		mcqs:           make(map[string]model.McqQuestion),
		dsaProblems:    make(map[string]model.DsaProblem),
		mcqSubmissions: make(map[pairKey]model.McqSubmission),
		dsaSubmissions: make(map[string]model.DsaSubmission),
		now:            time.Now,
	}
}

func (s *Store) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByEmail[user.Email]; ok {
		return common.ErrEmailExists
	}
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	s.usersByEmail[user.Email] = user.ID
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (s *Store) CreateContest(ctx context.Context, c *model.Contest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contestsBySlug[c.Slug]; ok {
		return common.Errorf("contest with this slug already exists: %w", common.ErrConflict)
	}
	c.CreatedAt = s.now()
	s.contests[c.ID] = *c
	s.contestsBySlug[c.Slug] = c.ID
	return nil
}

func (s *Store) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contests[id]
	if !ok {
		return nil, common.ErrContestNotFound
	}
	return &c, nil
}

func (s *Store) FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error) {
	s.mu.RLock()
	id, ok := s.contestsBySlug[slug]
	s.mu.RUnlock()
	if !ok {
		return nil, common.ErrContestNotFound
	}
	return s.FindContestByID(ctx, id)
}

func (s *Store) CreateMcq(ctx context.Context, q *model.McqQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q.CreatedAt = s.now()
	stored := *q
	stored.Options = append([]string(nil), q.Options...)
	if q.CorrectOptionIndex != nil {
		idx := *q.CorrectOptionIndex
		stored.CorrectOptionIndex = &idx
	}
	s.mcqs[q.ID] = stored
	return nil
}

func (s *Store) FindMcqInContest(ctx context.Context, contestID, questionID string) (*model.McqQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.mcqs[questionID]
	if !ok || q.ContestID != contestID {
		return nil, common.ErrQuestionNotFound
	}
	return copyMcq(q), nil
}

func (s *Store) ListMcqsByContest(ctx context.Context, contestID string) ([]model.McqQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.McqQuestion{}
	for _, q := range s.mcqs {
		if q.ContestID == contestID {
			out = append(out, *copyMcq(q))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateDsaProblem(ctx context.Context, p *model.DsaProblem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt = s.now()
	for i := range p.TestCases {
		p.TestCases[i].ProblemID = p.ID
		p.TestCases[i].SortOrder = i + 1
	}
	s.dsaProblems[p.ID] = *copyDsa(*p)
	return nil
}

func (s *Store) FindDsaProblemInContest(ctx context.Context, contestID, problemID string) (*model.DsaProblem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.dsaProblems[problemID]
	if !ok || p.ContestID != contestID {
		return nil, common.ErrQuestionNotFound
	}
	cp := copyDsa(p)
	cp.TestCases = nil
	return cp, nil
}

func (s *Store) ListDsaProblemsByContest(ctx context.Context, contestID string) ([]model.DsaProblem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.DsaProblem{}
	for _, p := range s.dsaProblems {
		if p.ContestID == contestID {
			out = append(out, *copyDsa(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) HasMcqSubmission(ctx context.Context, userID, questionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.mcqSubmissions[pairKey{userID, questionID}]
	return ok, nil
}

func (s *Store) CreateMcqSubmission(ctx context.Context, sub *model.McqSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{sub.UserID, sub.QuestionID}
	if _, ok := s.mcqSubmissions[key]; ok {
		return common.ErrAlreadySubmitted
	}
	sub.CreatedAt = s.now()
	s.mcqSubmissions[key] = *sub
	return nil
}

func (s *Store) ContestScores(ctx context.Context, contestID string, limit int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	totals := map[string]int{}
	for _, sub := range s.mcqSubmissions {
		if sub.ContestID == contestID {
			totals[sub.UserID] += sub.PointsEarned
		}
	}
	s.mu.RUnlock()

	entries := make([]model.LeaderboardEntry, 0, len(totals))
	for userID, points := range totals {
		entries = append(entries, model.LeaderboardEntry{UserID: userID, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// CreateDsaSubmission holds the write lock across afterInsert so the record only
// becomes visible once the callback has succeeded.
func (s *Store) CreateDsaSubmission(ctx context.Context, sub *model.DsaSubmission, afterInsert func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if afterInsert != nil {
		if err := afterInsert(ctx); err != nil {
			return err
		}
	}
	sub.CreatedAt = s.now()
	s.dsaSubmissions[sub.ID] = *sub
	return nil
}

// DsaSubmission returns a stored DSA submission; it exists for inspection in
// tests and local runs.
func (s *Store) DsaSubmission(id string) (model.DsaSubmission, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.dsaSubmissions[id]
	return sub, ok
}

func copyMcq(q model.McqQuestion) *model.McqQuestion {
	q.Options = append([]string(nil), q.Options...)
	if q.CorrectOptionIndex != nil {
		idx := *q.CorrectOptionIndex
		q.CorrectOptionIndex = &idx
	}
	return &q
}

func copyDsa(p model.DsaProblem) *model.DsaProblem {
	p.Tags = append([]string(nil), p.Tags...)
	p.TestCases = append([]model.TestCase(nil), p.TestCases...)
	return &p
}
