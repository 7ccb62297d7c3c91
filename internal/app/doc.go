// Package app is the application layer — the only component that references
// multiple domain components. It orchestrates the use cases: account
// registration and login, the article approval workflow, suggestions, and
// the topic message-submission flow. Events are published only after the
// triggering write has committed.
package app
