package realtime

import (
	"log/slog"
	"time"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

// Publisher routes committed domain events to their audiences: article
// workflow events go to every notification subscriber, message events go to
// one topic's members. It is called synchronously after the triggering
// write has committed and performs no retries; zero recipients is a no-op.
type Publisher struct {
	hub  *Hub
	pool *Pool
}

func NewPublisher(hub *Hub, pool *Pool) *Publisher {
	return &Publisher{hub: hub, pool: pool}
}

// ArticleSubmitted notifies reviewers that a new article awaits review.
func (p *Publisher) ArticleSubmitted(article *domain.Article) {
	p.pool.Publish(domain.ContentSubmitted{
		ID:        article.ID,
		Title:     article.Title,
		AuthorID:  article.AuthorID,
		CreatedAt: article.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ArticleApproved notifies reviewers of an approval outcome.
func (p *Publisher) ArticleApproved(article *domain.Article) {
	approvedAt := ""
	if article.ApprovedAt != nil {
		approvedAt = article.ApprovedAt.UTC().Format(time.RFC3339)
	}
	p.pool.Publish(domain.ContentApproved{
		ID:         article.ID,
		Title:      article.Title,
		ApprovedAt: approvedAt,
	})
}

// ArticleRejected notifies reviewers of a rejection outcome.
func (p *Publisher) ArticleRejected(article *domain.Article) {
	p.pool.Publish(domain.ContentRejected{
		ID:     article.ID,
		Title:  article.Title,
		Reason: article.RejectionReason,
	})
}

// MessagePosted fans a stored comment out to the article's live members.
func (p *Publisher) MessagePosted(articleID int64, comment *domain.Comment) {
	frame, err := MarshalMessageFrame(comment)
	if err != nil {
		slog.Error("Failed to marshal message frame", "article_id", articleID, "comment_id", comment.ID, "error", err)
		return
	}
	p.hub.Broadcast(articleID, frame)
}
