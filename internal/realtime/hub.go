package realtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/inkwell-cms/inkwell/internal/domain"
	"github.com/inkwell-cms/inkwell/internal/metrics"
)

const (
	commandTimeout   = 5 * time.Second
	stopTimeout      = 10 * time.Second
	commandQueueSize = 256
)

type topicMembers map[*websocket.Conn]*clientWriter

// hubCmd is the command interface for the Hub actor.
type hubCmd interface{ isHubCmd() }

type baseHubCmd struct{}

func (baseHubCmd) isHubCmd() {}

type joinCmd struct {
	baseHubCmd
	articleID    int64
	connection   *websocket.Conn
	identity     domain.Identity
	replyChannel chan joinReply
}

type joinReply struct {
	member *Member
	err    error
}

type leaveCmd struct {
	baseHubCmd
	articleID  int64
	connection *websocket.Conn
}

type broadcastCmd struct {
	baseHubCmd
	articleID int64
	data      []byte
}

type memberCountCmd struct {
	baseHubCmd
	articleID    int64
	replyChannel chan int
}

type topicCountCmd struct {
	baseHubCmd
	replyChannel chan int
}

type stopCmd struct {
	baseHubCmd
}

// Member is the handle a joined connection gets back. Direct frames to this
// one client (error acknowledgments) go through Send; Leave is idempotent
// and safe to call from any goroutine, any number of times.
type Member struct {
	hub        *Hub
	articleID  int64
	connection *websocket.Conn
	writer     *clientWriter
	identity   domain.Identity
}

// Identity returns the authenticated principal that opened the connection.
func (m *Member) Identity() domain.Identity {
	return m.identity
}

// Send enqueues a frame for this member only. Returns an error if the
// member's buffer is full or the writer already stopped.
func (m *Member) Send(data []byte) error {
	if !m.writer.enqueue(data) {
		return fmt.Errorf("send buffer full or connection closed")
	}
	return nil
}

// Leave removes the member from its topic. Idempotent.
func (m *Member) Leave() {
	m.hub.Leave(m.articleID, m.connection)
}

// Hub is the topic registry: it maps article IDs to the set of live
// websocket connections discussing that article and fans events out to
// them. A single goroutine owns the map; all mutation goes through the
// command channel, which also serializes broadcast order per topic.
type Hub struct {
	cmdCh              chan hubCmd
	clock              clockwork.Clock
	topics             map[int64]topicMembers
	maxClientsPerTopic int
	done               chan struct{}
}

// NewHub creates the hub and starts its actor goroutine.
// maxClientsPerTopic caps membership per topic (resource exhaustion guard).
func NewHub(maxClientsPerTopic int, clock clockwork.Clock) *Hub {
	h := &Hub{
		cmdCh:              make(chan hubCmd, commandQueueSize),
		clock:              clock,
		topics:             make(map[int64]topicMembers),
		maxClientsPerTopic: maxClientsPerTopic,
		done:               make(chan struct{}),
	}
	go h.run()
	return h
}

// Join registers a connection under a topic, creating the topic entry if
// absent. The identity must already be validated; the hub performs no
// authentication.
func (h *Hub) Join(articleID int64, conn *websocket.Conn, identity domain.Identity) (*Member, error) {
	replyCh := make(chan joinReply, 1)
	h.cmdCh <- joinCmd{articleID: articleID, connection: conn, identity: identity, replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply.member, reply.err
	case <-timer.Chan():
		return nil, fmt.Errorf("join command timed out after %v", commandTimeout)
	}
}

// Leave removes a connection from a topic. Leaving a connection that is not
// registered is a no-op, so the racing cleanup paths (read-loop exit and
// failed broadcast send) are both safe.
func (h *Hub) Leave(articleID int64, conn *websocket.Conn) {
	h.cmdCh <- leaveCmd{articleID: articleID, connection: conn}
}

// Broadcast delivers data to every connection currently in the topic. The
// member set is snapshotted when the actor processes the command; a failed
// enqueue evicts that one connection and is never surfaced to the caller.
// An unknown topic is a no-op.
func (h *Hub) Broadcast(articleID int64, data []byte) {
	h.cmdCh <- broadcastCmd{articleID: articleID, data: data}
}

// MemberCount returns the number of connections in a topic.
// Returns -1 if the command times out.
func (h *Hub) MemberCount(articleID int64) int {
	replyCh := make(chan int, 1)
	h.cmdCh <- memberCountCmd{articleID: articleID, replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("MemberCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// TopicCount returns the number of topics with at least one member.
// Returns -1 if the command times out.
func (h *Hub) TopicCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- topicCountCmd{replyChannel: replyCh}

	timer := h.clock.NewTimer(commandTimeout)
	defer timer.Stop()

	select {
	case count := <-replyCh:
		return count
	case <-timer.Chan():
		slog.Warn("TopicCount timed out", "timeout", commandTimeout)
		return -1
	}
}

// Stop shuts down the hub, sending close frames to all clients. Blocks
// until the actor goroutine has exited or the stop timeout is reached.
func (h *Hub) Stop() {
	h.cmdCh <- stopCmd{}

	timer := h.clock.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case <-h.done:
		slog.Info("Hub stopped gracefully")
	case <-timer.Chan():
		slog.Warn("Hub stop timeout exceeded", "timeout", stopTimeout)
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Hub panic recovered", "panic", r)
			h.closeAllClients("hub panic")
		}
	}()
	defer close(h.done)

	depthTicker := h.clock.NewTicker(1 * time.Second)
	defer depthTicker.Stop()

	for {
		select {
		case <-depthTicker.Chan():
			metrics.HubCommandChannelDepth.Set(float64(len(h.cmdCh)))
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case joinCmd:
				h.handleJoin(c)
			case leaveCmd:
				h.handleLeave(c.articleID, c.connection)
			case broadcastCmd:
				h.handleBroadcast(c)
			case memberCountCmd:
				c.replyChannel <- len(h.topics[c.articleID])
			case topicCountCmd:
				c.replyChannel <- len(h.topics)
			case stopCmd:
				h.handleStop()
				return
			default:
				slog.Warn("Hub received unknown command type", "command_type", fmt.Sprintf("%T", cmd))
			}
		}
	}
}

func (h *Hub) handleJoin(c joinCmd) {
	members, exists := h.topics[c.articleID]
	if !exists {
		members = make(topicMembers)
		h.topics[c.articleID] = members
	}

	if len(members) >= h.maxClientsPerTopic {
		slog.Warn("Rejecting client: max clients reached", "article_id", c.articleID, "max_clients", h.maxClientsPerTopic)
		if !exists {
			delete(h.topics, c.articleID)
		}
		c.connection.Close()
		c.replyChannel <- joinReply{err: fmt.Errorf("max clients per topic (%d) reached", h.maxClientsPerTopic)}
		return
	}

	cw := newClientWriter(c.connection, h.clock)
	members[c.connection] = cw

	metrics.HubActiveTopics.Set(float64(len(h.topics)))
	metrics.HubConnectedClients.Inc()

	slog.Debug("Client joined topic", "article_id", c.articleID, "user_id", c.identity.UserID, "total_members", len(members))
	c.replyChannel <- joinReply{member: &Member{
		hub:        h,
		articleID:  c.articleID,
		connection: c.connection,
		writer:     cw,
		identity:   c.identity,
	}}
}

func (h *Hub) handleLeave(articleID int64, conn *websocket.Conn) {
	members, exists := h.topics[articleID]
	if !exists {
		return
	}

	cw, exists := members[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(members, conn)
	metrics.HubConnectedClients.Dec()

	// Empty topics are garbage collected in the same critical section as
	// the removal; a topic entry never outlives its last member.
	if len(members) == 0 {
		delete(h.topics, articleID)
		metrics.HubActiveTopics.Set(float64(len(h.topics)))
		slog.Info("Last client left topic", "article_id", articleID)
	} else {
		slog.Debug("Client left topic", "article_id", articleID, "remaining_members", len(members))
	}
}

func (h *Hub) handleBroadcast(c broadcastCmd) {
	members, exists := h.topics[c.articleID]
	if !exists {
		return
	}

	start := h.clock.Now()

	var slow []*websocket.Conn
	for conn, writer := range members {
		if !writer.enqueue(c.data) {
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		slog.Warn("Evicting slow client", "article_id", c.articleID)
		metrics.HubSlowClientsEvicted.Inc()
		h.handleLeave(c.articleID, conn)
	}

	metrics.HubBroadcastDuration.Observe(h.clock.Since(start).Seconds())
}

func (h *Hub) handleStop() {
	totalClients := 0
	for _, members := range h.topics {
		totalClients += len(members)
	}
	slog.Info("Hub shutting down", "topics", len(h.topics), "total_clients", totalClients)

	h.closeAllClients("Server shutting down")
}

// closeAllClients closes every connection with the given reason. Used
// during graceful shutdown and panic recovery.
func (h *Hub) closeAllClients(reason string) {
	for articleID, members := range h.topics {
		for _, cw := range members {
			cw.stopGraceful(reason)
		}
		delete(h.topics, articleID)
	}
	metrics.HubActiveTopics.Set(0)
}
