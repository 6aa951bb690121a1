package repository

import (
	"context"
	"database/sql"
	"fmt"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"
)

// McqSubmissionUniqueConstraint is the postgres constraint that keeps at most one
// submission per (user_id, question_id).
const McqSubmissionUniqueConstraint = "mcq_submissions_user_question_key"

type SubmissionRepository interface {
	HasMcqSubmission(ctx context.Context, userID, questionID string) (bool, error)
	// CreateMcqSubmission returns common.ErrAlreadySubmitted when the pair already
	// has a committed submission, whatever the outcome of an earlier pre-check.
	CreateMcqSubmission(ctx context.Context, sub *model.McqSubmission) error
	// ContestScores sums points per user for a contest, highest first. A
	// non-positive limit returns every participant.
	ContestScores(ctx context.Context, contestID string, limit int) ([]model.LeaderboardEntry, error)

	// CreateDsaSubmission inserts sub and runs afterInsert before committing. An
	// afterInsert error discards the insert.
	CreateDsaSubmission(ctx context.Context, sub *model.DsaSubmission, afterInsert func(context.Context) error) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) HasMcqSubmission(ctx context.Context, userID, questionID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM mcq_submissions WHERE user_id = $1 AND question_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, userID, questionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.HasMcqSubmission: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) CreateMcqSubmission(ctx context.Context, sub *model.McqSubmission) error {
	query := `INSERT INTO mcq_submissions (id, user_id, question_id, contest_id, selected_option_index, is_correct, points_earned)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query,
		sub.ID, sub.UserID, sub.QuestionID, sub.ContestID, sub.SelectedOptionIndex, sub.IsCorrect, sub.PointsEarned,
	).Scan(&sub.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, McqSubmissionUniqueConstraint) {
			return common.ErrAlreadySubmitted
		}
		return fmt.Errorf("pgSubmissionRepository.CreateMcqSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ContestScores(ctx context.Context, contestID string, limit int) ([]model.LeaderboardEntry, error) {
	query := `SELECT user_id, SUM(points_earned) AS points
	          FROM mcq_submissions
	          WHERE contest_id = $1
	          GROUP BY user_id
	          ORDER BY points DESC, user_id ASC`
	args := []interface{}{contestID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestScores query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ContestScores scan: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ContestScores rows.Err: %w", err)
	}
	return entries, nil
}

func (r *pgSubmissionRepository) CreateDsaSubmission(ctx context.Context, sub *model.DsaSubmission, afterInsert func(context.Context) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateDsaSubmission begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO dsa_submissions (id, user_id, problem_id, contest_id, language, code, status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`
	err = tx.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.ContestID, sub.Language, sub.Code, sub.Status).Scan(&sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateDsaSubmission: %w", err)
	}

	if afterInsert != nil {
		if err := afterInsert(ctx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateDsaSubmission commit: %w", err)
	}
	return nil
}
