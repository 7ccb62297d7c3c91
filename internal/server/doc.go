// Package server wires the HTTP surface: REST handlers for accounts,
// articles and suggestions, the per-article WebSocket topic channel, and
// the global SSE notification stream for reviewers.
package server
