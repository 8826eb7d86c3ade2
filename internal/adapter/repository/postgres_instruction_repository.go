package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

type postgresInstructionRepository struct {
	db *gorm.DB
}

func NewPostgresInstructionRepository(db *gorm.DB) repository.InstructionRepository {
	return &postgresInstructionRepository{db: db}
}

func (r *postgresInstructionRepository) ListAll(ctx context.Context) ([]*entity.Instruction, error) {
	var rows []instructionRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to list instructions", err)
	}
	return instructionsFromRows(rows), nil
}

func (r *postgresInstructionRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Instruction, error) {
	var rows []instructionRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to list instructions for user", err)
	}
	return instructionsFromRows(rows), nil
}

func (r *postgresInstructionRepository) GetByID(ctx context.Context, id string) (*entity.Instruction, error) {
	var row instructionRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Instruction", err)
		}
		return nil, errors.Internal("Failed to get instruction", err)
	}
	return row.toEntity(), nil
}

func (r *postgresInstructionRepository) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error {
	result := r.db.WithContext(ctx).Model(&instructionRow{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return errors.Internal("Failed to update instruction status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("Instruction", nil)
	}
	return nil
}

func (r *postgresInstructionRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Instruction, error) {
	pattern := likePattern(query)
	var rows []instructionRow
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to search instructions", err)
	}
	return instructionsFromRows(rows), nil
}

func instructionsFromRows(rows []instructionRow) []*entity.Instruction {
	instructions := make([]*entity.Instruction, 0, len(rows))
	for i := range rows {
		instructions = append(instructions, rows[i].toEntity())
	}
	return instructions
}
