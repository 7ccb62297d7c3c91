package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

// suggestionColumns must match the Scan order in scanSuggestion.
const suggestionColumns = `id, title, description, author_id, votes, created_at`

// SuggestionRepo implements domain.SuggestionRepository backed by PostgreSQL.
type SuggestionRepo struct {
	db *pgxpool.Pool
}

func NewSuggestionRepo(db *pgxpool.Pool) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

func scanSuggestion(row pgx.Row) (*domain.Suggestion, error) {
	var s domain.Suggestion
	err := row.Scan(&s.ID, &s.Title, &s.Description, &s.AuthorID, &s.Votes, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SuggestionRepo) Create(ctx context.Context, title, description string, authorID int64) (*domain.Suggestion, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO suggestions (title, description, author_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+suggestionColumns,
		title, description, authorID)

	suggestion, err := scanSuggestion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create suggestion: %w", err)
	}
	return suggestion, nil
}

func (r *SuggestionRepo) GetByID(ctx context.Context, id int64) (*domain.Suggestion, error) {
	row := r.db.QueryRow(ctx, `SELECT `+suggestionColumns+` FROM suggestions WHERE id = $1`, id)
	suggestion, err := scanSuggestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSuggestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}
	return suggestion, nil
}

func (r *SuggestionRepo) List(ctx context.Context, limit, offset int) ([]*domain.Suggestion, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions
		 ORDER BY votes DESC, created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*domain.Suggestion
	for rows.Next() {
		suggestion, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, suggestion)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}
	return suggestions, nil
}

// AddVote records one vote per user per suggestion. The vote row and the
// counter update commit atomically.
func (r *SuggestionRepo) AddVote(ctx context.Context, id, userID int64) (*domain.Suggestion, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO suggestion_votes (suggestion_id, user_id) VALUES ($1, $2)`,
		id, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return nil, domain.ErrAlreadyVoted
			case foreignKeyViolation:
				return nil, domain.ErrSuggestionNotFound
			}
		}
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	row := tx.QueryRow(ctx,
		`UPDATE suggestions SET votes = votes + 1 WHERE id = $1 RETURNING `+suggestionColumns,
		id)
	suggestion, err := scanSuggestion(row)
	if err != nil {
		return nil, fmt.Errorf("failed to increment votes: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}
	return suggestion, nil
}
