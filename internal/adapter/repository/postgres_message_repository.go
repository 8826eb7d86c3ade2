package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskcommadmin/internal/domain/entity"
	"taskcommadmin/internal/domain/repository"
	"taskcommadmin/pkg/errors"
)

const likeEscape = ` ESCAPE '\'`

type postgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &postgresMessageRepository{
		db: db,
	}
}

func (r *postgresMessageRepository) FetchByTask(ctx context.Context, taskID string) ([]entity.ChatMessage, error) {
	var rows []messageRow
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to fetch messages", err)
	}
	return messagesFromRows(rows), nil
}

func (r *postgresMessageRepository) GetByID(ctx context.Context, id string) (*entity.ChatMessage, error) {
	var row messageRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}
	message := row.toEntity()
	return &message, nil
}

func (r *postgresMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error) {
	row := newMessageRow(message)
	row.ID = ""
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now()
	}
	if row.FileType == nil {
		text := entity.FileTypeText
		row.FileType = &text
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, errors.Internal("Failed to create message", err)
	}

	created := row.toEntity()
	created.SenderName = message.SenderName
	created.FileSize = message.FileSize
	return &created, nil
}

func (r *postgresMessageRepository) UpdateText(ctx context.Context, id, text string) error {
	return r.update(ctx, id, "text", text)
}

func (r *postgresMessageRepository) MarkRead(ctx context.Context, id string) error {
	return r.update(ctx, id, "is_read", true)
}

func (r *postgresMessageRepository) update(ctx context.Context, id, column string, value interface{}) error {
	result := r.db.WithContext(ctx).Model(&messageRow{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return errors.Internal("Failed to update message", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("Message", nil)
	}
	return nil
}

func (r *postgresMessageRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&messageRow{}).Error; err != nil {
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

func (r *postgresMessageRepository) CountUnread(ctx context.Context, taskID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messageRow{}).
		Where("task_id = ? AND is_read = ?", taskID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return int(count), nil
}

func (r *postgresMessageRepository) Search(ctx context.Context, query string, limit int) ([]entity.ChatMessage, error) {
	var rows []messageRow
	err := r.db.WithContext(ctx).
		Where("LOWER(text) LIKE ?"+likeEscape, likePattern(query)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to search messages", err)
	}
	return messagesFromRows(rows), nil
}

func (r *postgresMessageRepository) Probe(ctx context.Context, messageID string) *entity.PermissionReport {
	report := &entity.PermissionReport{Backend: "postgres"}

	message, err := r.GetByID(ctx, messageID)
	report.Checks = append(report.Checks, permissionCheck("read_message", err, "message found"))
	if err != nil {
		return report
	}
	report.Message = message

	var taskCount int64
	err = r.db.WithContext(ctx).Model(&messageRow{}).Where("task_id = ?", message.TaskID).Count(&taskCount).Error
	report.Checks = append(report.Checks, permissionCheck("read_task_messages", err, fmt.Sprintf("%d messages", taskCount)))

	var senderCount int64
	err = r.db.WithContext(ctx).Model(&messageRow{}).Where("sender_id = ?", message.SenderID).Count(&senderCount).Error
	report.Checks = append(report.Checks, permissionCheck("read_sender_messages", err, fmt.Sprintf("%d messages", senderCount)))

	return report
}

func messagesFromRows(rows []messageRow) []entity.ChatMessage {
	messages := make([]entity.ChatMessage, 0, len(rows))
	for i := range rows {
		messages = append(messages, rows[i].toEntity())
	}
	return messages
}
