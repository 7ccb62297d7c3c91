package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Topic hub metrics
var (
	// HubActiveTopics tracks the number of topics with at least one live connection
	HubActiveTopics = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_active_topics",
			Help: "Number of topics with at least one live websocket connection",
		},
	)

	// HubConnectedClients tracks connected websocket clients across all topics
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients_total",
			Help: "Total number of connected websocket clients across all topics",
		},
	)

	// HubSlowClientsEvicted counts clients removed because their send buffer was full
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Total clients evicted because their send buffer was full",
		},
	)

	// HubBroadcastDuration tracks per-topic broadcast fan-out duration
	HubBroadcastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hub_broadcast_duration_seconds",
			Help:    "Duration of a single topic broadcast fan-out",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	// HubCommandChannelDepth tracks pending commands in the hub actor channel
	HubCommandChannelDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_command_channel_depth",
			Help: "Current depth of the hub command channel",
		},
	)
)

// WebSocket connection metrics
var (
	// WebSocketMessageSendDuration tracks time to write a message to a client
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "Time to write a single message to a websocket client",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// WebSocketPingFailures counts failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed websocket keepalive pings",
		},
	)
)

// Notification pool metrics
var (
	// NotificationSubscribers tracks live notification stream subscribers
	NotificationSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_subscribers",
			Help: "Number of live notification stream subscribers",
		},
	)

	// NotificationsPublished counts events published to the pool by kind
	NotificationsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total events published to the notification pool by event kind",
		},
		[]string{"event"},
	)

	// NotificationsDropped counts subscribers pruned because their queue was full or closed
	NotificationsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Total subscribers pruned during publish because their queue was full or closed",
		},
	)

	// NotificationsNoRecipients counts publishes that reached zero subscribers.
	// Distinguishes "nobody listening" from "all deliveries failed" in dashboards.
	NotificationsNoRecipients = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_no_recipients_total",
			Help: "Total publishes that reached zero subscribers",
		},
	)
)

// Storage metrics
var (
	// CommentStoreBreakerState tracks the comment store circuit breaker state (0=closed, 1=half-open, 2=open)
	CommentStoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comment_store_breaker_state",
			Help: "Comment store circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// CommentStoreFailures counts failed comment persistence attempts
	CommentStoreFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comment_store_failures_total",
			Help: "Total failed comment persistence attempts",
		},
	)
)
