package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/response"
)

const (
	ContextUID      = "uid"
	ContextIdentity = "identity"
)

type AuthMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthMiddleware(authUseCase *usecase.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{
		authUseCase: authUseCase,
	}
}

// Authenticate verifies the bearer token and stores the identity on the
// context. Browsers cannot set headers on WebSocket upgrades, so the token
// may also come as the token query parameter.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := TokenFromRequest(c)
		if err != nil {
			return response.Error(c, err)
		}

		identity, err := m.authUseCase.Authenticate(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, err)
		}

		c.Set(ContextUID, identity.UserID)
		c.Set(ContextIdentity, identity)
		return next(c)
	}
}

// TokenFromRequest reads the bearer token of the Authorization header or
// the token query parameter.
func TokenFromRequest(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

// IdentityFrom returns the identity stored by Authenticate.
func IdentityFrom(c echo.Context) *entity.Identity {
	identity, _ := c.Get(ContextIdentity).(*entity.Identity)
	return identity
}
