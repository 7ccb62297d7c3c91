package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/app"
	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/config"
	"github.com/inkwell-cms/inkwell/internal/domain"
	"github.com/inkwell-cms/inkwell/internal/realtime"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// --- In-memory fakes ---

type memUserRepo struct {
	users  map[string]*domain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (m *memUserRepo) Create(_ context.Context, email, username, passwordHash string, role domain.Role) (*domain.User, error) {
	if _, exists := m.users[email]; exists {
		return nil, domain.ErrEmailTaken
	}
	user := &domain.User{ID: m.nextID, Email: email, Username: username, PasswordHash: passwordHash, Role: role, CreatedAt: time.Now()}
	m.nextID++
	m.users[email] = user
	return user, nil
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

type memArticleRepo struct {
	articles map[int64]*domain.Article
	nextID   int64
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{articles: make(map[int64]*domain.Article), nextID: 1}
}

func (m *memArticleRepo) Create(_ context.Context, title, content string, authorID int64) (*domain.Article, error) {
	a := &domain.Article{ID: m.nextID, Title: title, Content: content, AuthorID: authorID, Status: domain.StatusPending, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.nextID++
	m.articles[a.ID] = a
	return a, nil
}

func (m *memArticleRepo) GetByID(_ context.Context, id int64) (*domain.Article, error) {
	if a, ok := m.articles[id]; ok {
		return a, nil
	}
	return nil, domain.ErrArticleNotFound
}

func (m *memArticleRepo) List(_ context.Context, status domain.ArticleStatus, _, _ int) ([]*domain.Article, error) {
	var out []*domain.Article
	for _, a := range m.articles {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memArticleRepo) ListByAuthor(_ context.Context, authorID int64, _, _ int) ([]*domain.Article, error) {
	var out []*domain.Article
	for _, a := range m.articles {
		if a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memArticleRepo) Update(_ context.Context, id int64, title, content string) (*domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	a.Title, a.Content = title, content
	return a, nil
}

func (m *memArticleRepo) SetApproved(_ context.Context, id int64) (*domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	now := time.Now()
	a.Status = domain.StatusApproved
	a.ApprovedAt = &now
	return a, nil
}

func (m *memArticleRepo) SetRejected(_ context.Context, id int64, reason string) (*domain.Article, error) {
	a, ok := m.articles[id]
	if !ok {
		return nil, domain.ErrArticleNotFound
	}
	a.Status = domain.StatusRejected
	a.RejectionReason = reason
	return a, nil
}

// memCommentStore stores comments in memory. setFailure makes every Save
// fail, simulating a storage outage. Access is locked because tests toggle
// the failure while server goroutines are saving.
type memCommentStore struct {
	mu       sync.Mutex
	comments []*domain.Comment
	failWith error
}

func (m *memCommentStore) setFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func (m *memCommentStore) saved() []*domain.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Comment(nil), m.comments...)
}

func (m *memCommentStore) Save(_ context.Context, articleID, authorID int64, content string) (*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	c := &domain.Comment{ID: int64(len(m.comments) + 1), ArticleID: articleID, AuthorID: authorID, Content: content, CreatedAt: time.Now()}
	m.comments = append(m.comments, c)
	return c, nil
}

func (m *memCommentStore) ListByArticle(_ context.Context, articleID int64, _, _ int) ([]*domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Comment
	for _, c := range m.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memSuggestionRepo struct {
	suggestions map[int64]*domain.Suggestion
	votes       map[[2]int64]bool
	nextID      int64
}

func newMemSuggestionRepo() *memSuggestionRepo {
	return &memSuggestionRepo{suggestions: make(map[int64]*domain.Suggestion), votes: make(map[[2]int64]bool), nextID: 1}
}

func (m *memSuggestionRepo) Create(_ context.Context, title, description string, authorID int64) (*domain.Suggestion, error) {
	s := &domain.Suggestion{ID: m.nextID, Title: title, Description: description, AuthorID: authorID, CreatedAt: time.Now()}
	m.nextID++
	m.suggestions[s.ID] = s
	return s, nil
}

func (m *memSuggestionRepo) GetByID(_ context.Context, id int64) (*domain.Suggestion, error) {
	if s, ok := m.suggestions[id]; ok {
		return s, nil
	}
	return nil, domain.ErrSuggestionNotFound
}

func (m *memSuggestionRepo) List(_ context.Context, _, _ int) ([]*domain.Suggestion, error) {
	var out []*domain.Suggestion
	for _, s := range m.suggestions {
		out = append(out, s)
	}
	return out, nil
}

func (m *memSuggestionRepo) AddVote(_ context.Context, id, userID int64) (*domain.Suggestion, error) {
	s, ok := m.suggestions[id]
	if !ok {
		return nil, domain.ErrSuggestionNotFound
	}
	key := [2]int64{id, userID}
	if m.votes[key] {
		return nil, domain.ErrAlreadyVoted
	}
	m.votes[key] = true
	s.Votes++
	return s, nil
}

type nullPinger struct{ err error }

func (n nullPinger) Ping(_ context.Context) error { return n.err }

// --- Test harness ---

type testEnv struct {
	srv      *Server
	ts       *httptest.Server
	hub      *realtime.Hub
	pool     *realtime.Pool
	tokens   *auth.TokenService
	users    *memUserRepo
	articles *memArticleRepo
	comments *memCommentStore
	service  *app.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hub := realtime.NewHub(100, clockwork.NewRealClock())
	pool := realtime.NewPool()
	publisher := realtime.NewPublisher(hub, pool)
	tokens := auth.NewTokenService(testSecret, time.Hour, clockwork.NewRealClock())

	users := newMemUserRepo()
	articles := newMemArticleRepo()
	comments := &memCommentStore{}
	suggestions := newMemSuggestionRepo()

	service := app.NewService(users, articles, comments, suggestions, tokens, publisher)

	cfg := &config.Config{AppEnv: "test", Port: "0", MaxClientsPerTopic: 100}
	srv := NewServer(cfg, service, hub, pool, tokens, nullPinger{})

	ts := httptest.NewServer(srv.echo)
	t.Cleanup(func() {
		ts.Close()
		hub.Stop()
		pool.Close()
	})

	return &testEnv{
		srv:      srv,
		ts:       ts,
		hub:      hub,
		pool:     pool,
		tokens:   tokens,
		users:    users,
		articles: articles,
		comments: comments,
		service:  service,
	}
}

// seedUser creates an account directly and returns a valid token for it.
func (e *testEnv) seedUser(t *testing.T, email string, role domain.Role) (*domain.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("longenough")
	require.NoError(t, err)

	user, err := e.users.Create(context.Background(), email, strings.Split(email, "@")[0], hash, role)
	require.NoError(t, err)

	token, err := e.tokens.Issue(user)
	require.NoError(t, err)
	return user, token
}

// wsURL converts the test server base URL into a ws:// endpoint.
func (e *testEnv) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(e.ts.URL, "http") + path
}
