package middleware

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
	"taskcommadmin/pkg/response"
)

type AdminMiddleware struct {
	authUseCase *usecase.AuthUseCase
}

func NewAdminMiddleware(authUseCase *usecase.AuthUseCase) *AdminMiddleware {
	return &AdminMiddleware{
		authUseCase: authUseCase,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := IdentityFrom(c)
		if identity == nil {
			return response.Error(c, errors.Unauthorized("Authentication required", nil))
		}

		admin, err := m.authUseCase.IsAdmin(c.Request().Context(), identity)
		if err != nil {
			logger.Error("Admin check for %s failed: %v", identity.UserID, err)
			return response.Error(c, err)
		}
		if !admin {
			return response.Error(c, errors.Forbidden("Not authorized as admin", nil))
		}

		identity.Role = entity.RoleAdmin
		return next(c)
	}
}
