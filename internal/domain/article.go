package domain

import "time"

// ArticleStatus is the approval-workflow state of an article.
type ArticleStatus string

const (
	StatusPending  ArticleStatus = "pending"
	StatusApproved ArticleStatus = "approved"
	StatusRejected ArticleStatus = "rejected"
)

type Article struct {
	ID              int64         `db:"id"`
	Title           string        `db:"title"`
	Content         string        `db:"content"`
	AuthorID        int64         `db:"author_id"`
	Status          ArticleStatus `db:"status"`
	RejectionReason string        `db:"rejection_reason"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
	ApprovedAt      *time.Time    `db:"approved_at"`
}
