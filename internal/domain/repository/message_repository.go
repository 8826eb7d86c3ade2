package repository

import (
	"context"

	"taskcommadmin/internal/domain/entity"
)

// MessageRepository is the chat capability every backend adapter provides.
// GetByID returns a NOT_FOUND AppError when the message does not exist.
type MessageRepository interface {
	FetchByTask(ctx context.Context, taskID string) ([]entity.ChatMessage, error)
	GetByID(ctx context.Context, id string) (*entity.ChatMessage, error)
	Create(ctx context.Context, message *entity.ChatMessage) (*entity.ChatMessage, error)
	UpdateText(ctx context.Context, id, text string) error
	MarkRead(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context, taskID string) (int, error)
	Search(ctx context.Context, query string, limit int) ([]entity.ChatMessage, error)

	// Probe runs read-only access checks for diagnostics.
	Probe(ctx context.Context, messageID string) *entity.PermissionReport
}
