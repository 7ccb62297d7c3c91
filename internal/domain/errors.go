package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrArticleNotFound    = errors.New("article not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")
	ErrAlreadyVoted       = errors.New("user already voted for suggestion")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
