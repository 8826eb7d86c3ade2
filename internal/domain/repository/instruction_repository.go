package repository

import (
	"context"

	"taskcommadmin/internal/domain/entity"
)

type InstructionRepository interface {
	ListAll(ctx context.Context) ([]*entity.Instruction, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Instruction, error)
	GetByID(ctx context.Context, id string) (*entity.Instruction, error)
	UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error
	Search(ctx context.Context, query string, limit int) ([]*entity.Instruction, error)
}
