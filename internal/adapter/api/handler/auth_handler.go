package handler

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type meResponse struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
}

// Me returns the verified admin behind the request.
func (h *AuthHandler) Me(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	admin, err := h.authUseCase.IsAdmin(c.Request().Context(), identity)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, meResponse{
		UserID:  identity.UserID,
		Email:   identity.Email,
		Name:    identity.Name,
		Role:    identity.Role,
		IsAdmin: admin,
	})
}
