package domain

// EventKind tags a domain event. Each kind has exactly one payload type, so
// dispatch on the concrete Event type is exhaustive at compile time.
type EventKind string

const (
	EventContentSubmitted EventKind = "content_submitted"
	EventContentApproved  EventKind = "content_approved"
	EventContentRejected  EventKind = "content_rejected"
	EventMessagePosted    EventKind = "message_posted"

	// EventConnected is the synthetic acknowledgment sent once when a
	// notification stream opens. It is never published through the pool.
	EventConnected EventKind = "connected"
)

// Event is a transient, immutable notification of a completed state change.
// Events are fanned out to live connections and never persisted.
type Event interface {
	EventKind() EventKind
}

type ContentSubmitted struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

func (ContentSubmitted) EventKind() EventKind { return EventContentSubmitted }

type ContentApproved struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	ApprovedAt string `json:"approved_at"`
}

func (ContentApproved) EventKind() EventKind { return EventContentApproved }

type ContentRejected struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

func (ContentRejected) EventKind() EventKind { return EventContentRejected }

type MessagePosted struct {
	ID        int64  `json:"id"`
	Content   string `json:"content"`
	AuthorID  int64  `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

func (MessagePosted) EventKind() EventKind { return EventMessagePosted }

type Connected struct {
	Message string `json:"message"`
}

func (Connected) EventKind() EventKind { return EventConnected }

// EventPublisher is the single entry point domain logic uses to push events
// after the triggering write has committed. Implementations never block on
// slow consumers and never surface delivery failures to the caller.
type EventPublisher interface {
	ArticleSubmitted(article *Article)
	ArticleApproved(article *Article)
	ArticleRejected(article *Article)
	MessagePosted(articleID int64, comment *Comment)
}
