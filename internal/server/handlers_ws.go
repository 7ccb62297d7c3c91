package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
	"github.com/inkwell-cms/inkwell/internal/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients connect from the SPA origin
	},
}

// inboundFrame is the only frame clients may send on a topic channel.
type inboundFrame struct {
	Content string `json:"content"`
}

// closeConn sends a close frame and drops the connection. Used before the
// connection is handed to the hub, while this goroutine still owns writes.
func closeConn(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}

func (s *Server) handleTopicChannel(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || articleID <= 0 {
		return apperrors.ValidationError("invalid article id").WithContext("id", c.Param("id"))
	}

	token := bearerToken(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.InternalError("failed to upgrade connection", err)
	}

	// Credentials are checked after the upgrade so the failure reaches the
	// client as a policy-violation close frame instead of an HTTP status.
	identity, err := s.tokens.Validate(token)
	if err != nil {
		closeConn(conn, websocket.ClosePolicyViolation, "invalid or expired token")
		return nil
	}

	member, err := s.hub.Join(articleID, conn, identity)
	if err != nil {
		closeConn(conn, websocket.CloseTryAgainLater, "topic unavailable")
		return nil
	}

	slog.Info("Topic channel opened", "article_id", articleID, "user_id", identity.UserID)

	// Read pump. Malformed or rejected frames answer the sender only; the
	// loop ends when the client goes away.
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			_ = member.Send(realtime.MarshalErrorFrame("malformed frame"))
			continue
		}

		_, err = s.app.PostMessage(c.Request().Context(), articleID, identity.UserID, frame.Content)
		if err != nil {
			_ = member.Send(realtime.MarshalErrorFrame(postMessageErrorText(err)))
		}
	}

	member.Leave()
	slog.Info("Topic channel closed", "article_id", articleID, "user_id", identity.UserID)

	return nil
}

// postMessageErrorText maps a post failure to the error frame text. Internal
// detail stays out of the frame.
func postMessageErrorText(err error) string {
	if structured := apperrors.AsStructuredError(err); structured != nil {
		switch structured.Type {
		case apperrors.TypeValidation:
			return structured.Message
		case apperrors.TypeStorage:
			return "message could not be saved"
		}
	}
	return "message could not be processed"
}
