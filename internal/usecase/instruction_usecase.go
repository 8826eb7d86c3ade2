package usecase

import (
	"context"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

type InstructionUseCase struct {
	instructionRepo repository.InstructionRepository
	taskRepo        repository.TaskRepository
}

func NewInstructionUseCase(instructionRepo repository.InstructionRepository, taskRepo repository.TaskRepository) *InstructionUseCase {
	return &InstructionUseCase{
		instructionRepo: instructionRepo,
		taskRepo:        taskRepo,
	}
}

func (uc *InstructionUseCase) ListInstructions(ctx context.Context) ([]*entity.Instruction, error) {
	instructions, err := uc.instructionRepo.ListAll(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to list instructions", err)
	}
	if instructions == nil {
		instructions = []*entity.Instruction{}
	}
	return instructions, nil
}

func (uc *InstructionUseCase) GetInstruction(ctx context.Context, id string) (*entity.Instruction, error) {
	instruction, err := uc.instructionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError("Instruction", err)
	}
	return instruction, nil
}

func (uc *InstructionUseCase) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) (*entity.Instruction, error) {
	if !status.Valid() {
		return nil, errors.BadRequest("Invalid status: "+string(status), nil)
	}

	instruction, err := uc.GetInstruction(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.instructionRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Internal("Failed to update instruction status", err)
	}

	instruction.Status = status
	return instruction, nil
}

func (uc *InstructionUseCase) ListTasks(ctx context.Context, instructionID string) ([]*entity.Task, error) {
	if _, err := uc.GetInstruction(ctx, instructionID); err != nil {
		return nil, err
	}

	tasks, err := uc.taskRepo.ListByInstruction(ctx, instructionID)
	if err != nil {
		return nil, errors.Internal("Failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	return tasks, nil
}
