package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/response"
)

type TaskHandler struct {
	taskUseCase *usecase.TaskUseCase
}

func NewTaskHandler(taskUseCase *usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
	}
}

type updateTaskRequest struct {
	Title       string     `json:"title" validate:"omitempty,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TaskHandler) GetTask(c echo.Context) error {
	task, err := h.taskUseCase.GetTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, task)
}

func (h *TaskHandler) UpdateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	task, err := h.taskUseCase.UpdateTask(c.Request().Context(), c.Param("id"), usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, task)
}

func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	task, err := h.taskUseCase.UpdateStatus(c.Request().Context(), c.Param("id"), entity.TaskStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, task)
}

func (h *TaskHandler) DeleteTask(c echo.Context) error {
	if err := h.taskUseCase.DeleteTask(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{
		"message": "Task deleted",
	})
}
