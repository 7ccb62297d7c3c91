package domain

import "context"

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, email, username, passwordHash string, role Role) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// ArticleRepository persists articles and their workflow state.
type ArticleRepository interface {
	Create(ctx context.Context, title, content string, authorID int64) (*Article, error)
	GetByID(ctx context.Context, id int64) (*Article, error)
	List(ctx context.Context, status ArticleStatus, limit, offset int) ([]*Article, error)
	ListByAuthor(ctx context.Context, authorID int64, limit, offset int) ([]*Article, error)
	Update(ctx context.Context, id int64, title, content string) (*Article, error)
	SetApproved(ctx context.Context, id int64) (*Article, error)
	SetRejected(ctx context.Context, id int64, reason string) (*Article, error)
}

// CommentStore is the persistence collaborator for the topic channel: the
// websocket message-submission flow saves the raw message here before it is
// re-published to the topic's members.
type CommentStore interface {
	Save(ctx context.Context, articleID, authorID int64, content string) (*Comment, error)
	ListByArticle(ctx context.Context, articleID int64, limit, offset int) ([]*Comment, error)
}

// SuggestionRepository persists feature suggestions and their vote counts.
type SuggestionRepository interface {
	Create(ctx context.Context, title, description string, authorID int64) (*Suggestion, error)
	GetByID(ctx context.Context, id int64) (*Suggestion, error)
	List(ctx context.Context, limit, offset int) ([]*Suggestion, error)
	AddVote(ctx context.Context, id, userID int64) (*Suggestion, error)
}

// TokenValidator verifies a bearer credential and extracts the identity
// claim. It is a pure check: no side effects, no retries, and it must
// complete before any stateful registration happens.
type TokenValidator interface {
	Validate(token string) (Identity, error)
}

// TokenIssuer mints an access token for an authenticated user.
type TokenIssuer interface {
	Issue(user *User) (string, error)
}
