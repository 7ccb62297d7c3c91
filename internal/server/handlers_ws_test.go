package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

// dialTopic opens a topic channel for the given article with the given token.
func dialTopic(t *testing.T, env *testEnv, articleID int64, token string) *websocket.Conn {
	t.Helper()

	url := env.wsURL(fmt.Sprintf("/ws/articles/%d?token=%s", articleID, token))
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readTopicFrame reads one frame and decodes its {type, data} envelope.
func readTopicFrame(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &frame))
	return frame.Type, frame.Data
}

// expectSilence asserts that no frame arrives within the window.
func expectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(window)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	var netErr interface{ Timeout() bool }
	require.True(t, errors.As(err, &netErr) && netErr.Timeout(), "expected read timeout, got %v", err)
}

func waitForMemberCount(env *testEnv, articleID int64, expected int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if env.hub.MemberCount(articleID) == expected {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestTopicChannel_PostAndBroadcast(t *testing.T) {
	env := newTestEnv(t)
	author, token1 := env.seedUser(t, "writer@example.com", domain.RoleUser)
	_, token2 := env.seedUser(t, "reader@example.com", domain.RoleUser)

	const articleID = 42
	sender := dialTopic(t, env, articleID, token1)
	receiver := dialTopic(t, env, articleID, token2)
	require.True(t, waitForMemberCount(env, articleID, 2))

	require.NoError(t, sender.WriteJSON(map[string]string{"content": "first!"}))

	for _, conn := range []*websocket.Conn{sender, receiver} {
		frameType, data := readTopicFrame(t, conn)
		assert.Equal(t, "message", frameType)

		var msg domain.MessagePosted
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, "first!", msg.Content)
		assert.Equal(t, author.ID, msg.AuthorID)
		assert.NotEmpty(t, msg.CreatedAt)
	}

	// The message was persisted, not just broadcast.
	require.Len(t, env.comments.saved(), 1)
	assert.Equal(t, int64(articleID), env.comments.saved()[0].ArticleID)
}

func TestTopicChannel_ScopedToArticle(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := env.seedUser(t, "writer@example.com", domain.RoleUser)
	_, token2 := env.seedUser(t, "reader@example.com", domain.RoleUser)

	sender := dialTopic(t, env, 1, token1)
	other := dialTopic(t, env, 2, token2)
	require.True(t, waitForMemberCount(env, 1, 1))
	require.True(t, waitForMemberCount(env, 2, 1))

	require.NoError(t, sender.WriteJSON(map[string]string{"content": "topic one only"}))

	frameType, _ := readTopicFrame(t, sender)
	assert.Equal(t, "message", frameType)

	expectSilence(t, other, 300*time.Millisecond)
}

func TestTopicChannel_InvalidTokenClosedWithPolicyViolation(t *testing.T) {
	env := newTestEnv(t)

	const articleID = 7
	url := env.wsURL(fmt.Sprintf("/ws/articles/%d?token=%s", articleID, "garbage"))
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)

	var closeErr *websocket.CloseError
	require.True(t, errors.As(err, &closeErr), "expected close frame, got %v", err)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)

	// The failed connection never registered anywhere.
	assert.Equal(t, 0, env.hub.MemberCount(articleID))
	assert.Equal(t, 0, env.pool.Len())
}

func TestTopicChannel_StorageFailureAnswersSenderOnly(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := env.seedUser(t, "writer@example.com", domain.RoleUser)
	_, token2 := env.seedUser(t, "reader@example.com", domain.RoleUser)

	const articleID = 5
	sender := dialTopic(t, env, articleID, token1)
	bystander := dialTopic(t, env, articleID, token2)
	require.True(t, waitForMemberCount(env, articleID, 2))

	env.comments.setFailure(errors.New("connection refused"))

	require.NoError(t, sender.WriteJSON(map[string]string{"content": "doomed"}))

	frameType, data := readTopicFrame(t, sender)
	assert.Equal(t, "error", frameType)

	var errData struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &errData))
	assert.Equal(t, "message could not be saved", errData.Message)

	// Nothing reaches the other member and nothing is persisted.
	expectSilence(t, bystander, 300*time.Millisecond)
	assert.Empty(t, env.comments.saved())

	// Both members remain connected and the channel recovers.
	env.comments.setFailure(nil)
	require.NoError(t, sender.WriteJSON(map[string]string{"content": "retry"}))

	frameType, _ = readTopicFrame(t, bystander)
	assert.Equal(t, "message", frameType)
}

func TestTopicChannel_MalformedFrame(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "writer@example.com", domain.RoleUser)

	conn := dialTopic(t, env, 3, token)
	require.True(t, waitForMemberCount(env, 3, 1))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	frameType, _ := readTopicFrame(t, conn)
	assert.Equal(t, "error", frameType)

	// The connection survives and still accepts well-formed frames.
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "still here"}))
	frameType, _ = readTopicFrame(t, conn)
	assert.Equal(t, "message", frameType)
}

func TestTopicChannel_EmptyContentRejected(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "writer@example.com", domain.RoleUser)

	conn := dialTopic(t, env, 3, token)
	require.True(t, waitForMemberCount(env, 3, 1))

	require.NoError(t, conn.WriteJSON(map[string]string{"content": "   "}))

	frameType, _ := readTopicFrame(t, conn)
	assert.Equal(t, "error", frameType)
	assert.Empty(t, env.comments.saved())
}

func TestTopicChannel_DisconnectLeavesTopic(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "writer@example.com", domain.RoleUser)

	conn := dialTopic(t, env, 9, token)
	require.True(t, waitForMemberCount(env, 9, 1))

	require.NoError(t, conn.Close())
	require.True(t, waitForMemberCount(env, 9, 0))
	assert.Equal(t, 0, env.hub.TopicCount())
}

func TestTopicChannel_InvalidArticleID(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "writer@example.com", domain.RoleUser)

	url := env.wsURL("/ws/articles/abc?token=" + token)
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, 400, resp.StatusCode)
		resp.Body.Close()
	}
	if conn != nil {
		conn.Close()
	}
}
