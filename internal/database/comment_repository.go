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

// foreignKeyViolation is the PostgreSQL error code for FK violations.
const foreignKeyViolation = "23503"

// commentColumns must match the Scan order in scanComment.
const commentColumns = `id, article_id, author_id, content, created_at`

// CommentRepo implements domain.CommentStore backed by PostgreSQL. This is
// the persistence collaborator the websocket message-submission flow writes
// through before re-publishing to the topic.
type CommentRepo struct {
	db *pgxpool.Pool
}

func NewCommentRepo(db *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{db: db}
}

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var comment domain.Comment
	err := row.Scan(&comment.ID, &comment.ArticleID, &comment.AuthorID, &comment.Content, &comment.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *CommentRepo) Save(ctx context.Context, articleID, authorID int64, content string) (*domain.Comment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO comments (article_id, author_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING `+commentColumns,
		articleID, authorID, content)

	comment, err := scanComment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, domain.ErrArticleNotFound
		}
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return comment, nil
}

func (r *CommentRepo) ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]*domain.Comment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+commentColumns+` FROM comments
		 WHERE article_id = $1
		 ORDER BY created_at ASC
		 LIMIT $2 OFFSET $3`,
		articleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}
