package app

import (
	"context"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/domain"
	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
	"github.com/inkwell-cms/inkwell/internal/logging"
)

const (
	minTitleLength    = 5
	minContentLength  = 10
	minPasswordLength = 8
	DefaultPageSize   = 50
	MaxPageSize       = 200
)

// Service orchestrates all use cases. Handlers talk to it; it talks to the
// repositories and the event publisher.
type Service struct {
	users       domain.UserRepository
	articles    domain.ArticleRepository
	comments    domain.CommentStore
	suggestions domain.SuggestionRepository
	tokens      domain.TokenIssuer
	publisher   domain.EventPublisher
}

func NewService(
	users domain.UserRepository,
	articles domain.ArticleRepository,
	comments domain.CommentStore,
	suggestions domain.SuggestionRepository,
	tokens domain.TokenIssuer,
	publisher domain.EventPublisher,
) *Service {
	return &Service{
		users:       users,
		articles:    articles,
		comments:    comments,
		suggestions: suggestions,
		tokens:      tokens,
		publisher:   publisher,
	}
}

// --- Accounts ---

// Register creates a new user account with the default role.
func (s *Service) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.ValidationError("a valid email is required")
	}
	if username == "" {
		return nil, apperrors.ValidationError("username is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.ValidationError("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError("failed to hash password", err)
	}

	user, err := s.users.Create(ctx, email, username, hash, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	logging.WithUser(user.ID).Info("User registered", "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Same failure for unknown email and bad password.
		return "", nil, domain.ErrInvalidCredentials
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, apperrors.InternalError("failed to issue token", err)
	}

	logging.WithUser(user.ID).Info("User logged in")
	return token, user, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// --- Articles ---

func validateArticle(title, content string) error {
	if len(strings.TrimSpace(title)) < minTitleLength {
		return apperrors.ValidationError("title must be at least 5 characters")
	}
	if len(strings.TrimSpace(content)) < minContentLength {
		return apperrors.ValidationError("content must be at least 10 characters")
	}
	return nil
}

// CreateArticle stores a new article in pending status and notifies
// reviewers. The event is published only after the insert has committed.
func (s *Service) CreateArticle(ctx context.Context, authorID int64, title, content string) (*domain.Article, error) {
	if err := validateArticle(title, content); err != nil {
		return nil, err
	}

	article, err := s.articles.Create(ctx, title, content, authorID)
	if err != nil {
		return nil, err
	}

	s.publisher.ArticleSubmitted(article)

	logging.WithArticle(article.ID).Info("Article created", "author_id", authorID)
	return article, nil
}

// GetArticle retrieves an article; non-reviewers only see approved ones or
// their own.
func (s *Service) GetArticle(ctx context.Context, identity domain.Identity, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.StatusApproved && article.AuthorID != identity.UserID && !identity.Role.CanReview() {
		return nil, domain.ErrArticleNotFound
	}
	return article, nil
}

// ListArticles lists articles by status. Non-reviewers may only list
// approved articles.
func (s *Service) ListArticles(ctx context.Context, identity domain.Identity, status domain.ArticleStatus, limit, offset int) ([]*domain.Article, error) {
	if status != domain.StatusApproved && !identity.Role.CanReview() {
		return nil, apperrors.ForbiddenError("only reviewers may list unpublished articles")
	}
	return s.articles.List(ctx, status, clampLimit(limit), offset)
}

// ListOwnArticles lists the caller's articles in any status.
func (s *Service) ListOwnArticles(ctx context.Context, identity domain.Identity, limit, offset int) ([]*domain.Article, error) {
	return s.articles.ListByAuthor(ctx, identity.UserID, clampLimit(limit), offset)
}

// UpdateArticle edits a pending article. Only the author (or an admin) may
// edit, and only while the article is still pending.
func (s *Service) UpdateArticle(ctx context.Context, identity domain.Identity, id int64, title, content string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.AuthorID != identity.UserID && identity.Role != domain.RoleAdmin {
		return nil, apperrors.ForbiddenError("only the author may edit this article")
	}
	if article.Status != domain.StatusPending {
		return nil, apperrors.ConflictError("only pending articles can be edited")
	}
	if err := validateArticle(title, content); err != nil {
		return nil, err
	}
	return s.articles.Update(ctx, id, title, content)
}

// ApproveArticle transitions a pending article to approved and notifies
// reviewers after the transition has committed.
func (s *Service) ApproveArticle(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.StatusPending {
		return nil, apperrors.ConflictError("article is not pending review")
	}

	article, err = s.articles.SetApproved(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publisher.ArticleApproved(article)

	logging.WithArticle(article.ID).Info("Article approved")
	return article, nil
}

// RejectArticle transitions a pending article to rejected with a reason and
// notifies reviewers after the transition has committed.
func (s *Service) RejectArticle(ctx context.Context, id int64, reason string) (*domain.Article, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.ValidationError("a rejection reason is required")
	}

	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article.Status != domain.StatusPending {
		return nil, apperrors.ConflictError("article is not pending review")
	}

	article, err = s.articles.SetRejected(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	s.publisher.ArticleRejected(article)

	logging.WithArticle(article.ID).Info("Article rejected", "reason", reason)
	return article, nil
}

// --- Topic messages ---

// PostMessage persists a discussion message and fans it out to the topic's
// live members. A persistence failure is returned to the caller and
// nothing is broadcast.
func (s *Service) PostMessage(ctx context.Context, articleID, authorID int64, content string) (*domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ValidationError("message content cannot be empty")
	}

	comment, err := s.comments.Save(ctx, articleID, authorID, content)
	if err != nil {
		return nil, apperrors.StorageError("failed to save message", err)
	}

	// Only after the write committed does anyone else hear about it.
	s.publisher.MessagePosted(articleID, comment)

	return comment, nil
}

// ListMessages returns an article's stored discussion messages.
func (s *Service) ListMessages(ctx context.Context, articleID int64, limit, offset int) ([]*domain.Comment, error) {
	return s.comments.ListByArticle(ctx, articleID, clampLimit(limit), offset)
}

// --- Suggestions ---

// CreateSuggestion stores a new feature suggestion.
func (s *Service) CreateSuggestion(ctx context.Context, authorID int64, title, description string) (*domain.Suggestion, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperrors.ValidationError("title is required")
	}
	return s.suggestions.Create(ctx, title, description, authorID)
}

// ListSuggestions lists suggestions ordered by votes.
func (s *Service) ListSuggestions(ctx context.Context, limit, offset int) ([]*domain.Suggestion, error) {
	return s.suggestions.List(ctx, clampLimit(limit), offset)
}

// VoteSuggestion records one vote per user.
func (s *Service) VoteSuggestion(ctx context.Context, id, userID int64) (*domain.Suggestion, error) {
	return s.suggestions.AddVote(ctx, id, userID)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
