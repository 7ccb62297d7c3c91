package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-cms/inkwell/internal/domain"
	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
	"github.com/inkwell-cms/inkwell/internal/realtime"
)

// handleNotificationStream serves the global SSE feed of moderation events.
// Role gating happens in middleware, so by the time this runs the caller is
// a reviewer.
func (s *Server) handleNotificationStream(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	response := c.Response()
	flusher, ok := response.Writer.(http.Flusher)
	if !ok {
		return apperrors.InternalError("streaming unsupported", nil)
	}

	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)

	sub := s.pool.Subscribe()
	defer s.pool.Unsubscribe(sub)

	slog.Info("Notification stream opened", "subscriber_id", sub.ID(), "user_id", identity.UserID)
	defer slog.Info("Notification stream closed", "subscriber_id", sub.ID(), "user_id", identity.UserID)

	// Acknowledge the subscription before any real event so clients can
	// tell an open stream from a hung request.
	if err := writeSSE(response, flusher, domain.Connected{Message: "subscribed"}); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events():
			if !ok {
				// Pool pruned or closed this subscriber.
				return nil
			}
			if err := writeSSE(response, flusher, event); err != nil {
				return nil
			}
		}
	}
}

func writeSSE(response *echo.Response, flusher http.Flusher, event domain.Event) error {
	payload, err := realtime.MarshalEnvelope(event)
	if err != nil {
		slog.Error("Failed to marshal notification", "error", err, "event", event.EventKind())
		return nil
	}
	if _, err := fmt.Fprintf(response, "data: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
