// Package realtime implements the event distribution layer: a per-topic
// websocket hub, a flat notification subscriber pool, and the publisher that
// routes domain events to both.
//
// The Hub uses the actor pattern: a single goroutine owns the topic map and
// receives mutation commands over a channel (no mutexes). Per-connection
// write goroutines with bounded buffers keep one slow client from stalling a
// broadcast; a client whose buffer is full is evicted. The Pool is a flat
// set of buffered queues guarded by one mutex; publish never blocks on a
// consumer.
package realtime
