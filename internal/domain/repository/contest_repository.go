package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"contest_arena/internal/common"
	"contest_arena/internal/domain/model"

	"github.com/google/uuid"
)

type ContestRepository interface {
	CreateContest(ctx context.Context, contest *model.Contest) error
	FindContestByID(ctx context.Context, id string) (*model.Contest, error)
	FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error)
}

type pgContestRepository struct {
	db *sql.DB
}

func NewPgContestRepository(db *sql.DB) ContestRepository {
	return &pgContestRepository{db: db}
}

const contestColumns = `id, slug, title, description, creator_id, start_time, end_time, created_at`

func (r *pgContestRepository) CreateContest(ctx context.Context, c *model.Contest) error {
	query := `INSERT INTO contests (id, slug, title, description, creator_id, start_time, end_time)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, c.ID, c.Slug, c.Title, c.Description, c.CreatorID, c.StartTime, c.EndTime).Scan(&c.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "contests_slug_key") {
			return fmt.Errorf("contest with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgContestRepository.CreateContest: %w", err)
	}
	return nil
}

func (r *pgContestRepository) FindContestByID(ctx context.Context, id string) (*model.Contest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrContestNotFound
	}
	query := `SELECT ` + contestColumns + ` FROM contests WHERE id = $1`
	return r.findOne(ctx, "FindContestByID", query, id)
}

func (r *pgContestRepository) FindContestBySlug(ctx context.Context, slug string) (*model.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests WHERE slug = $1`
	return r.findOne(ctx, "FindContestBySlug", query, slug)
}

func (r *pgContestRepository) findOne(ctx context.Context, op, query, arg string) (*model.Contest, error) {
	c := &model.Contest{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.Slug, &c.Title, &c.Description, &c.CreatorID, &c.StartTime, &c.EndTime, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrContestNotFound
		}
		return nil, fmt.Errorf("pgContestRepository.%s: %w", op, err)
	}
	return c, nil
}
