package server

import (
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-cms/inkwell/internal/domain"
	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
)

type articleRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type articleResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	AuthorID        int64  `json:"author_id"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	ApprovedAt      string `json:"approved_at,omitempty"`
}

type commentResponse struct {
	ID        int64  `json:"id"`
	ArticleID int64  `json:"article_id"`
	AuthorID  int64  `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toArticleResponse(article *domain.Article) articleResponse {
	resp := articleResponse{
		ID:              article.ID,
		Title:           article.Title,
		Content:         article.Content,
		AuthorID:        article.AuthorID,
		Status:          string(article.Status),
		RejectionReason: article.RejectionReason,
		CreatedAt:       article.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       article.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if article.ApprovedAt != nil {
		resp.ApprovedAt = article.ApprovedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toArticleResponses(articles []*domain.Article) []articleResponse {
	out := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, toArticleResponse(a))
	}
	return out
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid id").WithContext("id", c.Param("id"))
	}
	return id, nil
}

func pagination(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

func (s *Server) handleCreateArticle(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req articleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	article, err := s.app.CreateArticle(c.Request().Context(), identity.UserID, req.Title, req.Content)
	if err != nil {
		return err
	}

	return c.JSON(201, toArticleResponse(article))
}

func (s *Server) handleGetArticle(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	article, err := s.app.GetArticle(c.Request().Context(), identity, id)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return apperrors.NotFoundError("article not found").WithContext("article_id", id)
		}
		return err
	}

	return c.JSON(200, toArticleResponse(article))
}

func (s *Server) handleListArticles(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	status := domain.ArticleStatus(c.QueryParam("status"))
	if status == "" {
		status = domain.StatusApproved
	}

	limit, offset := pagination(c)
	articles, err := s.app.ListArticles(c.Request().Context(), identity, status, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(200, toArticleResponses(articles))
}

func (s *Server) handleListOwnArticles(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	limit, offset := pagination(c)
	articles, err := s.app.ListOwnArticles(c.Request().Context(), identity, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(200, toArticleResponses(articles))
}

func (s *Server) handleUpdateArticle(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req articleRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	article, err := s.app.UpdateArticle(c.Request().Context(), identity, id, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return apperrors.NotFoundError("article not found").WithContext("article_id", id)
		}
		return err
	}

	return c.JSON(200, toArticleResponse(article))
}

func (s *Server) handleApproveArticle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	article, err := s.app.ApproveArticle(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return apperrors.NotFoundError("article not found").WithContext("article_id", id)
		}
		return err
	}

	return c.JSON(200, toArticleResponse(article))
}

func (s *Server) handleRejectArticle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	article, err := s.app.RejectArticle(c.Request().Context(), id, req.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrArticleNotFound) {
			return apperrors.NotFoundError("article not found").WithContext("article_id", id)
		}
		return err
	}

	return c.JSON(200, toArticleResponse(article))
}

func (s *Server) handleListMessages(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	limit, offset := pagination(c)
	comments, err := s.app.ListMessages(c.Request().Context(), id, limit, offset)
	if err != nil {
		return err
	}

	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, commentResponse{
			ID:        comment.ID,
			ArticleID: comment.ArticleID,
			AuthorID:  comment.AuthorID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(200, out)
}
