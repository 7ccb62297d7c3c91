package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/inkwell-cms/inkwell/internal/domain"
)

// Topic channel frames. Outbound messages and error acknowledgments share
// the {type, data} envelope; inbound frames carry only the content.

type messageFrame struct {
	Type string               `json:"type"`
	Data domain.MessagePosted `json:"data"`
}

type errorFrame struct {
	Type string         `json:"type"`
	Data errorFrameData `json:"data"`
}

type errorFrameData struct {
	Message string `json:"message"`
}

// MarshalMessageFrame builds the outbound topic-channel frame for a stored
// comment.
func MarshalMessageFrame(comment *domain.Comment) ([]byte, error) {
	frame := messageFrame{
		Type: "message",
		Data: domain.MessagePosted{
			ID:        comment.ID,
			Content:   comment.Content,
			AuthorID:  comment.AuthorID,
			CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message frame: %w", err)
	}
	return data, nil
}

// MarshalErrorFrame builds an error acknowledgment frame for a single
// client. Marshalling a flat string cannot fail, so no error return.
func MarshalErrorFrame(message string) []byte {
	data, _ := json.Marshal(errorFrame{Type: "error", Data: errorFrameData{Message: message}})
	return data
}

// Envelope is the push-stream framing: one {event, data} object per event.
type Envelope struct {
	Event domain.EventKind `json:"event"`
	Data  domain.Event     `json:"data"`
}

// MarshalEnvelope serializes an event for the push stream.
func MarshalEnvelope(event domain.Event) ([]byte, error) {
	data, err := json.Marshal(Envelope{Event: event.EventKind(), Data: event})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.EventKind(), err)
	}
	return data, nil
}
