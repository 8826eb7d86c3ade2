package usecase

import (
	"context"
	"strings"
	"time"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
	"taskcommadmin/pkg/logger"
)

type TaskUseCase struct {
	taskRepo        repository.TaskRepository
	instructionRepo repository.InstructionRepository
}

func NewTaskUseCase(taskRepo repository.TaskRepository, instructionRepo repository.InstructionRepository) *TaskUseCase {
	return &TaskUseCase{
		taskRepo:        taskRepo,
		instructionRepo: instructionRepo,
	}
}

type CreateTaskInput struct {
	InstructionID string
	AdminID       string
	Title         string
	Description   string
	Status        entity.TaskStatus
	Priority      string
	DueDate       *time.Time
}

type UpdateTaskInput struct {
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
}

func (uc *TaskUseCase) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	task, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("Task", err)
	}
	return task, nil
}

func (uc *TaskUseCase) CreateTask(ctx context.Context, input CreateTaskInput) (*entity.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Task title is required", nil)
	}
	if _, err := uc.instructionRepo.GetByID(ctx, input.InstructionID); err != nil {
		return nil, lookupError("Instruction", err)
	}

	status := input.Status
	if status == "" {
		status = entity.StatusPending
	}
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid status: "+string(status), nil)
	}
	priority, err := normalizePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &entity.Task{
		InstructionID: input.InstructionID,
		AdminID:       input.AdminID,
		Title:         title,
		Description:   input.Description,
		Status:        status,
		Priority:      priority,
		DueDate:       input.DueDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, errors.Internal("Failed to create task", err)
	}

	logger.Info("Task %s created for instruction %s by %s", task.ID, task.InstructionID, task.AdminID)
	return task, nil
}

func (uc *TaskUseCase) UpdateTask(ctx context.Context, id string, input UpdateTaskInput) (*entity.Task, error) {
	task, err := uc.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		task.Title = title
	}
	if input.Description != "" {
		task.Description = input.Description
	}
	if input.Priority != "" {
		priority, err := normalizePriority(input.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	task.UpdatedAt = time.Now()

	if err := uc.taskRepo.Update(ctx, task); err != nil {
		return nil, errors.Internal("Failed to update task", err)
	}
	return task, nil
}

func (uc *TaskUseCase) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) (*entity.Task, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid status: "+string(status), nil)
	}

	task, err := uc.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.taskRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Internal("Failed to update task status", err)
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	return task, nil
}

func (uc *TaskUseCase) DeleteTask(ctx context.Context, id string) error {
	if _, err := uc.GetTask(ctx, id); err != nil {
		return err
	}
	if err := uc.taskRepo.Delete(ctx, id); err != nil {
		return errors.Internal("Failed to delete task", err)
	}
	logger.Info("Task %s deleted", id)
	return nil
}

func normalizePriority(p string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "":
		return entity.PriorityMedium, nil
	case entity.PriorityLow:
		return entity.PriorityLow, nil
	case entity.PriorityMedium:
		return entity.PriorityMedium, nil
	case entity.PriorityHigh:
		return entity.PriorityHigh, nil
	}
	return "", errors.BadRequest("Invalid priority: "+p, nil)
}
