package handler

import (
	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/response"
	"taskcommadmin/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateUserRequest struct {
	Name          string `json:"name" validate:"omitempty,min=1,max=200"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	BusinessField string `json:"business_field" validate:"omitempty,max=200"`
}

// ListUsers returns every active user, newest first. Passing page or limit
// switches to a paginated envelope.
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userUseCase.ListUsers(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	pagination := utils.GetPaginationParams(c)
	if !pagination.Requested {
		return response.Success(c, users)
	}
	start, end := pagination.Bounds(len(users))
	return response.Paginated(c, users[start:end], int64(len(users)), pagination.Page, pagination.PageSize)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userUseCase.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateUser(c.Request().Context(), c.Param("id"), usecase.UpdateUserInput{
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		BusinessField: req.BusinessField,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *UserHandler) DeactivateUser(c echo.Context) error {
	if err := h.userUseCase.DeactivateUser(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "User deactivated",
	})
}

func (h *UserHandler) GetUserInstructions(c echo.Context) error {
	instructions, err := h.userUseCase.GetUserInstructions(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, instructions)
}

func (h *UserHandler) GetUserTasks(c echo.Context) error {
	tasks, err := h.userUseCase.GetUserTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tasks)
}
