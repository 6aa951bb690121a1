package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"

	"github.com/google/uuid"
)

type QuestionRepository interface {
	CreateMcq(ctx context.Context, q *model.McqQuestion) error
	FindMcqInContest(ctx context.Context, contestID, questionID string) (*model.McqQuestion, error)
	ListMcqsByContest(ctx context.Context, contestID string) ([]model.McqQuestion, error)

	// CreateDsaProblem stores the problem and its test cases atomically.
	CreateDsaProblem(ctx context.Context, p *model.DsaProblem) error
	FindDsaProblemInContest(ctx context.Context, contestID, problemID string) (*model.DsaProblem, error)
	// ListDsaProblemsByContest returns problems with their test cases attached.
	ListDsaProblemsByContest(ctx context.Context, contestID string) ([]model.DsaProblem, error)
}

type pgQuestionRepository struct {
	db *sql.DB
}

func NewPgQuestionRepository(db *sql.DB) QuestionRepository {
	return &pgQuestionRepository{db: db}
}

func (r *pgQuestionRepository) CreateMcq(ctx context.Context, q *model.McqQuestion) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateMcq marshal options: %w", err)
	}
	query := `INSERT INTO mcq_questions (id, contest_id, question_text, options, correct_option_index, points)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING created_at`
	err = r.db.QueryRowContext(ctx, query, q.ID, q.ContestID, q.QuestionText, string(options), q.CorrectOptionIndex, q.Points).Scan(&q.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateMcq: %w", err)
	}
	return nil
}

func (r *pgQuestionRepository) FindMcqInContest(ctx context.Context, contestID, questionID string) (*model.McqQuestion, error) {
	if !validUUIDs(contestID, questionID) {
		return nil, common.ErrQuestionNotFound
	}
	query := `SELECT id, contest_id, question_text, options, correct_option_index, points, created_at
	          FROM mcq_questions
	          WHERE id = $1 AND contest_id = $2`
	q, err := scanMcq(r.db.QueryRowContext(ctx, query, questionID, contestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindMcqInContest: %w", err)
	}
	return q, nil
}

func (r *pgQuestionRepository) ListMcqsByContest(ctx context.Context, contestID string) ([]model.McqQuestion, error) {
	query := `SELECT id, contest_id, question_text, options, correct_option_index, points, created_at
	          FROM mcq_questions
	          WHERE contest_id = $1
	          ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListMcqsByContest query: %w", err)
	}
	defer rows.Close()

	mcqs := []model.McqQuestion{}
	for rows.Next() {
		q, err := scanMcq(rows)
		if err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.ListMcqsByContest scan: %w", err)
		}
		mcqs = append(mcqs, *q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListMcqsByContest rows.Err: %w", err)
	}
	return mcqs, nil
}

func (r *pgQuestionRepository) CreateDsaProblem(ctx context.Context, p *model.DsaProblem) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateDsaProblem marshal tags: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateDsaProblem begin: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	query := `INSERT INTO dsa_problems (id, contest_id, title, description, tags, points, time_limit_ms, memory_limit_kb)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at`
	err = tx.QueryRowContext(ctx, query, p.ID, p.ContestID, p.Title, p.Description, string(tags), p.Points, p.TimeLimitMs, p.MemoryLimitKb).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateDsaProblem: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO dsa_test_cases (id, problem_id, input, expected_output, is_hidden, sort_order) VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateDsaProblem prepare: %w", err)
	}
	defer stmt.Close()

	for i := range p.TestCases {
		tc := &p.TestCases[i]
		tc.ProblemID = p.ID
		tc.SortOrder = i + 1
		if _, err := stmt.ExecContext(ctx, tc.ID, p.ID, tc.Input, tc.ExpectedOutput, tc.IsHidden, tc.SortOrder); err != nil {
			return fmt.Errorf("pgQuestionRepository.CreateDsaProblem exec for test case %s: %w", tc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgQuestionRepository.CreateDsaProblem commit: %w", err)
	}
	return nil
}

func (r *pgQuestionRepository) FindDsaProblemInContest(ctx context.Context, contestID, problemID string) (*model.DsaProblem, error) {
	if !validUUIDs(contestID, problemID) {
		return nil, common.ErrQuestionNotFound
	}
	query := `SELECT id, contest_id, title, description, tags, points, time_limit_ms, memory_limit_kb, created_at
	          FROM dsa_problems
	          WHERE id = $1 AND contest_id = $2`
	p, err := scanDsa(r.db.QueryRowContext(ctx, query, problemID, contestID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("pgQuestionRepository.FindDsaProblemInContest: %w", err)
	}
	return p, nil
}

func (r *pgQuestionRepository) ListDsaProblemsByContest(ctx context.Context, contestID string) ([]model.DsaProblem, error) {
	query := `SELECT id, contest_id, title, description, tags, points, time_limit_ms, memory_limit_kb, created_at
	          FROM dsa_problems
	          WHERE contest_id = $1
	          ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest query: %w", err)
	}
	defer rows.Close()

	problems := []model.DsaProblem{}
	index := map[string]int{}
	for rows.Next() {
		p, err := scanDsa(rows)
		if err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest scan: %w", err)
		}
		index[p.ID] = len(problems)
		problems = append(problems, *p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest rows.Err: %w", err)
	}
	if len(problems) == 0 {
		return problems, nil
	}

	tcQuery := `SELECT tc.id, tc.problem_id, tc.input, tc.expected_output, tc.is_hidden, tc.sort_order
	            FROM dsa_test_cases tc
	            JOIN dsa_problems p ON p.id = tc.problem_id
	            WHERE p.contest_id = $1
	            ORDER BY tc.problem_id, tc.sort_order ASC`
	tcRows, err := r.db.QueryContext(ctx, tcQuery, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest test cases query: %w", err)
	}
	defer tcRows.Close()

	for tcRows.Next() {
		var tc model.TestCase
		if err := tcRows.Scan(&tc.ID, &tc.ProblemID, &tc.Input, &tc.ExpectedOutput, &tc.IsHidden, &tc.SortOrder); err != nil {
			return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest test cases scan: %w", err)
		}
		if i, ok := index[tc.ProblemID]; ok {
			problems[i].TestCases = append(problems[i].TestCases, tc)
		}
	}
	if err = tcRows.Err(); err != nil {
		return nil, fmt.Errorf("pgQuestionRepository.ListDsaProblemsByContest test cases rows.Err: %w", err)
	}
	return problems, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMcq(row rowScanner) (*model.McqQuestion, error) {
	var (
		q       model.McqQuestion
		options []byte
		correct int
	)
	if err := row.Scan(&q.ID, &q.ContestID, &q.QuestionText, &options, &correct, &q.Points, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options of question %s: %w", q.ID, err)
	}
	q.CorrectOptionIndex = &correct
	return &q, nil
}

func scanDsa(row rowScanner) (*model.DsaProblem, error) {
	var (
		p    model.DsaProblem
		tags []byte
	)
	if err := row.Scan(&p.ID, &p.ContestID, &p.Title, &p.Description, &tags, &p.Points, &p.TimeLimitMs, &p.MemoryLimitKb, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tags, &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of problem %s: %w", p.ID, err)
	}
	return &p, nil
}

// validUUIDs guards lookups so a malformed path parameter reads as "not found"
// instead of a postgres cast error.
func validUUIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
