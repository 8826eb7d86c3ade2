package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

type postgresTaskRepository struct {
	db *gorm.DB
}

func NewPostgresTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &postgresTaskRepository{db: db}
}

func (r *postgresTaskRepository) ListByInstruction(ctx context.Context, instructionID string) ([]*entity.Task, error) {
	return r.ListByInstructions(ctx, []string{instructionID})
}

func (r *postgresTaskRepository) ListByInstructions(ctx context.Context, instructionIDs []string) ([]*entity.Task, error) {
	if len(instructionIDs) == 0 {
		return []*entity.Task{}, nil
	}

	var rows []taskRow
	err := r.db.WithContext(ctx).
		Where("instruction_id IN ?", instructionIDs).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to list tasks", err)
	}
	return tasksFromRows(rows), nil
}

func (r *postgresTaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	var row taskRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Task", err)
		}
		return nil, errors.Internal("Failed to get task", err)
	}
	return row.toEntity(), nil
}

func (r *postgresTaskRepository) Create(ctx context.Context, task *entity.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	row := newTaskRow(task)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Internal("Failed to create task", err)
	}
	task.ID = row.ID
	return nil
}

func (r *postgresTaskRepository) Update(ctx context.Context, task *entity.Task) error {
	task.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"instruction_id": task.InstructionID,
		"admin_id":       task.AdminID,
		"title":          task.Title,
		"description":    task.Description,
		"status":         string(task.Status),
		"priority":       task.Priority,
		"due_date":       task.DueDate,
		"updated_at":     task.UpdatedAt,
	})
	if result.Error != nil {
		return errors.Internal("Failed to update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("Task", nil)
	}
	return nil
}

func (r *postgresTaskRepository) UpdateStatus(ctx context.Context, id string, status entity.TaskStatus) error {
	result := r.db.WithContext(ctx).Model(&taskRow{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return errors.Internal("Failed to update task status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("Task", nil)
	}
	return nil
}

func (r *postgresTaskRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&taskRow{}).Error; err != nil {
		return errors.Internal("Failed to delete task", err)
	}
	return nil
}

func (r *postgresTaskRepository) Search(ctx context.Context, query string, limit int) ([]*entity.Task, error) {
	pattern := likePattern(query)
	var rows []taskRow
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ?"+likeEscape+" OR LOWER(description) LIKE ?"+likeEscape, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to search tasks", err)
	}
	return tasksFromRows(rows), nil
}

func tasksFromRows(rows []taskRow) []*entity.Task {
	tasks := make([]*entity.Task, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, rows[i].toEntity())
	}
	return tasks
}
