package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

// articleColumns must match the Scan order in scanArticle.
const articleColumns = `id, title, content, author_id, status, rejection_reason, created_at, updated_at, approved_at`

// ArticleRepo implements domain.ArticleRepository backed by PostgreSQL.
type ArticleRepo struct {
	db *pgxpool.Pool
}

func NewArticleRepo(db *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{db: db}
}

func scanArticle(row pgx.Row) (*domain.Article, error) {
	var article domain.Article
	var status string
	err := row.Scan(
		&article.ID, &article.Title, &article.Content, &article.AuthorID,
		&status, &article.RejectionReason,
		&article.CreatedAt, &article.UpdatedAt, &article.ApprovedAt,
	)
	if err != nil {
		return nil, err
	}
	article.Status = domain.ArticleStatus(status)
	return &article, nil
}

func (r *ArticleRepo) collectArticles(rows pgx.Rows) ([]*domain.Article, error) {
	defer rows.Close()
	var articles []*domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepo) Create(ctx context.Context, title, content string, authorID int64) (*domain.Article, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO articles (title, content, author_id, status)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+articleColumns,
		title, content, authorID, string(domain.StatusPending))

	article, err := scanArticle(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepo) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	row := r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepo) List(ctx context.Context, status domain.ArticleStatus, limit, offset int) ([]*domain.Article, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE status = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return r.collectArticles(rows)
}

func (r *ArticleRepo) ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]*domain.Article, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+articleColumns+` FROM articles
		 WHERE author_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		authorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles by author: %w", err)
	}
	return r.collectArticles(rows)
}

func (r *ArticleRepo) Update(ctx context.Context, id int64, title, content string) (*domain.Article, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE articles
		 SET title = $2, content = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+articleColumns,
		id, title, content)

	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepo) SetApproved(ctx context.Context, id int64) (*domain.Article, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE articles
		 SET status = $2, approved_at = now(), updated_at = now()
		 WHERE id = $1
		 RETURNING `+articleColumns,
		id, string(domain.StatusApproved))

	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to approve article: %w", err)
	}
	return article, nil
}

func (r *ArticleRepo) SetRejected(ctx context.Context, id int64, reason string) (*domain.Article, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE articles
		 SET status = $2, rejection_reason = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING `+articleColumns,
		id, string(domain.StatusRejected), reason)

	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject article: %w", err)
	}
	return article, nil
}
