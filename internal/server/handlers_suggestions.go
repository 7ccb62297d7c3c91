package server

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-cms/inkwell/internal/domain"
	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
)

type suggestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type suggestionResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	AuthorID    int64  `json:"author_id"`
	Votes       int    `json:"votes"`
	CreatedAt   string `json:"created_at"`
}

func toSuggestionResponse(s *domain.Suggestion) suggestionResponse {
	return suggestionResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		AuthorID:    s.AuthorID,
		Votes:       s.Votes,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleCreateSuggestion(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req suggestionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	suggestion, err := s.app.CreateSuggestion(c.Request().Context(), identity.UserID, req.Title, req.Description)
	if err != nil {
		return err
	}

	return c.JSON(201, toSuggestionResponse(suggestion))
}

func (s *Server) handleListSuggestions(c echo.Context) error {
	limit, offset := pagination(c)
	suggestions, err := s.app.ListSuggestions(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	out := make([]suggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		out = append(out, toSuggestionResponse(suggestion))
	}
	return c.JSON(200, out)
}

func (s *Server) handleVoteSuggestion(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	suggestion, err := s.app.VoteSuggestion(c.Request().Context(), id, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrSuggestionNotFound) {
			return apperrors.NotFoundError("suggestion not found").WithContext("suggestion_id", id)
		}
		if errors.Is(err, domain.ErrAlreadyVoted) {
			return apperrors.ConflictError("already voted").WithContext("suggestion_id", id)
		}
		return err
	}

	return c.JSON(200, toSuggestionResponse(suggestion))
}
