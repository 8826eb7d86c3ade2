package repository

import (
	"context"

	"taskcommadmin/internal/domain/entity"
)

type TaskRepository interface {
	ListByInstruction(ctx context.Context, instructionID string) ([]*entity.Task, error)
	ListByInstructions(ctx context.Context, instructionIDs []string) ([]*entity.Task, error)
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]*entity.Task, error)
}
