package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/inkwell-cms/inkwell/internal/domain"
	"github.com/inkwell-cms/inkwell/internal/metrics"
)

const (
	breakerFailureThreshold = 5
	breakerOpenDuration     = 30 * time.Second
)

// CommentStoreBreaker wraps a CommentStore with a circuit breaker so the
// websocket message loop fails fast while the database is down instead of
// stacking up slow queries. A tripped breaker is still just a StorageError
// to the submitting client; other topic members see nothing.
type CommentStoreBreaker struct {
	inner   domain.CommentStore
	breaker *gobreaker.CircuitBreaker
}

func NewCommentStoreBreaker(inner domain.CommentStore) *CommentStoreBreaker {
	settings := gobreaker.Settings{
		Name:    "comment-store",
		Timeout: breakerOpenDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Comment store circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.CommentStoreBreakerState.Set(breakerStateValue(to))
		},
	}
	return &CommentStoreBreaker{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

func (s *CommentStoreBreaker) Save(ctx context.Context, articleID, authorID int64, content string) (*domain.Comment, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.Save(ctx, articleID, authorID, content)
	})
	if err != nil {
		metrics.CommentStoreFailures.Inc()
		return nil, err
	}
	return result.(*domain.Comment), nil
}

func (s *CommentStoreBreaker) ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]*domain.Comment, error) {
	result, err := s.breaker.Execute(func() (any, error) {
		return s.inner.ListByArticle(ctx, articleID, limit, offset)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.Comment), nil
}
