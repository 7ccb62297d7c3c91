package server

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/inkwell-cms/inkwell/internal/domain"
	apperrors "github.com/inkwell-cms/inkwell/internal/errors"
)

const identityContextKey = "identity"

// bearerToken extracts the credential from the Authorization header, falling
// back to the token query parameter for clients that cannot set headers
// (EventSource, browser WebSocket).
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return c.QueryParam("token")
}

func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return apperrors.UnauthorizedError("missing credentials")
		}

		identity, err := s.tokens.Validate(token)
		if err != nil {
			return apperrors.UnauthorizedError("invalid or expired token")
		}

		c.Set(identityContextKey, identity)
		return next(c)
	}
}

func (s *Server) requireReviewer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := c.Get(identityContextKey).(domain.Identity)
		if !ok {
			return apperrors.UnauthorizedError("missing credentials")
		}
		if !identity.Role.CanReview() {
			return apperrors.ForbiddenError("reviewer role required")
		}
		return next(c)
	}
}

func currentIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(identityContextKey).(domain.Identity)
	if !ok {
		return domain.Identity{}, apperrors.InternalError("missing identity in context", nil)
	}
	return identity, nil
}
