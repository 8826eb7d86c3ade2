package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"taskcommadmin/internal/adapter/api/middleware"
	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/usecase"
	"taskcommadmin/pkg/response"
)

type InstructionHandler struct {
	instructionUseCase *usecase.InstructionUseCase
	taskUseCase        *usecase.TaskUseCase
}

func NewInstructionHandler(instructionUseCase *usecase.InstructionUseCase, taskUseCase *usecase.TaskUseCase) *InstructionHandler {
	return &InstructionHandler{
		instructionUseCase: instructionUseCase,
		taskUseCase:        taskUseCase,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed"`
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *InstructionHandler) ListInstructions(c echo.Context) error {
	instructions, err := h.instructionUseCase.ListInstructions(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, instructions)
}

func (h *InstructionHandler) GetInstruction(c echo.Context) error {
	instruction, err := h.instructionUseCase.GetInstruction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, instruction)
}

func (h *InstructionHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	instruction, err := h.instructionUseCase.UpdateStatus(c.Request().Context(), c.Param("id"), entity.TaskStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, instruction)
}

func (h *InstructionHandler) ListTasks(c echo.Context) error {
	tasks, err := h.instructionUseCase.ListTasks(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tasks)
}

func (h *InstructionHandler) CreateTask(c echo.Context) error {
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.CreateTaskInput{
		InstructionID: c.Param("id"),
		Title:         req.Title,
		Description:   req.Description,
		Status:        entity.TaskStatus(req.Status),
		Priority:      req.Priority,
		DueDate:       req.DueDate,
	}
	if identity := middleware.IdentityFrom(c); identity != nil {
		input.AdminID = identity.UserID
	}

	task, err := h.taskUseCase.CreateTask(c.Request().Context(), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, task)
}
