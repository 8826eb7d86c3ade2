package usecase

import (
	"context"
	"strings"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

type UserUseCase struct {
	userRepo        repository.UserRepository
	instructionRepo repository.InstructionRepository
	taskRepo        repository.TaskRepository
}

func NewUserUseCase(userRepo repository.UserRepository, instructionRepo repository.InstructionRepository, taskRepo repository.TaskRepository) *UserUseCase {
	return &UserUseCase{
		userRepo:        userRepo,
		instructionRepo: instructionRepo,
		taskRepo:        taskRepo,
	}
}

type UpdateUserInput struct {
	Name          string
	Email         string
	Address       string
	BusinessField string
}

func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := uc.userRepo.List(ctx)
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}
	if users == nil {
		users = []*entity.User{}
	}
	return users, nil
}

func (uc *UserUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("User", err)
	}
	return user, nil
}

func (uc *UserUseCase) UpdateUser(ctx context.Context, userID string, input UpdateUserInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, lookupError("User", err)
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		user.Email = email
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.BusinessField != "" {
		user.BusinessField = input.BusinessField
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		if errors.IsNotFound(err) {
			return nil, err
		}
		return nil, errors.Internal("Failed to update user", err)
	}
	return user, nil
}

// DeactivateUser is a soft delete: the profile stays but is no longer listed.
func (uc *UserUseCase) DeactivateUser(ctx context.Context, userID string) error {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return lookupError("User", err)
	}
	if err := uc.userRepo.Deactivate(ctx, userID); err != nil {
		return errors.Internal("Failed to deactivate user", err)
	}
	return nil
}

func (uc *UserUseCase) GetUserInstructions(ctx context.Context, userID string) ([]*entity.Instruction, error) {
	instructions, err := uc.instructionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Internal("Failed to list instructions", err)
	}
	if instructions == nil {
		instructions = []*entity.Instruction{}
	}
	return instructions, nil
}

// GetUserTasks collects the tasks of every instruction the user owns.
func (uc *UserUseCase) GetUserTasks(ctx context.Context, userID string) ([]*entity.Task, error) {
	instructions, err := uc.GetUserInstructions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(instructions) == 0 {
		return []*entity.Task{}, nil
	}

	ids := make([]string, 0, len(instructions))
	for _, in := range instructions {
		ids = append(ids, in.ID)
	}

	tasks, err := uc.taskRepo.ListByInstructions(ctx, ids)
	if err != nil {
		return nil, errors.Internal("Failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	return tasks, nil
}

// lookupError keeps NOT_FOUND for missing records and reports anything else
// as an internal failure.
func lookupError(resource string, err error) error {
	if errors.IsNotFound(err) {
		return errors.NotFound(resource, err)
	}
	return errors.Internal("Failed to load "+strings.ToLower(resource), err)
}
