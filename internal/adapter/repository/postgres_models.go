package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskcommadmin/internal/domain/entity"
)

// Row models of the hosted Postgres schema. Column names follow the tables
// the admin app reads and writes.

type messageRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TaskID     string    `gorm:"column:task_id;index"`
	SenderID   string    `gorm:"column:sender_id;index"`
	SenderRole string    `gorm:"column:sender_role"`
	Text       string    `gorm:"column:text"`
	MediaURL   *string   `gorm:"column:media_url"`
	FileType   *string   `gorm:"column:file_type"`
	FileName   *string   `gorm:"column:file_name"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	IsRead     bool      `gorm:"column:is_read"`
}

func (messageRow) TableName() string { return "chat_messages" }

func (m *messageRow) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func newMessageRow(msg *entity.ChatMessage) *messageRow {
	return &messageRow{
		ID:         msg.ID,
		TaskID:     msg.TaskID,
		SenderID:   msg.SenderID,
		SenderRole: msg.SenderRole,
		Text:       msg.Text,
		MediaURL:   msg.MediaURL,
		FileType:   msg.FileType,
		FileName:   msg.FileName,
		CreatedAt:  msg.Timestamp,
		IsRead:     msg.IsRead,
	}
}

func (m *messageRow) toEntity() entity.ChatMessage {
	return entity.ChatMessage{
		ID:         m.ID,
		TaskID:     m.TaskID,
		SenderID:   m.SenderID,
		SenderRole: m.SenderRole,
		Text:       m.Text,
		MediaURL:   m.MediaURL,
		FileType:   m.FileType,
		FileName:   m.FileName,
		Timestamp:  m.CreatedAt,
		IsRead:     m.IsRead,
	}
}

type profileRow struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Email         string    `gorm:"column:email;index"`
	Name          string    `gorm:"column:name"`
	Role          string    `gorm:"column:role"`
	Address       string    `gorm:"column:address"`
	BusinessField string    `gorm:"column:business_field"`
	IsActive      bool      `gorm:"column:is_active;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (profileRow) TableName() string { return "profiles" }

func (p *profileRow) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *profileRow) toEntity() *entity.User {
	return &entity.User{
		ID:            p.ID,
		Name:          p.Name,
		Email:         p.Email,
		Address:       p.Address,
		BusinessField: p.BusinessField,
		Role:          p.Role,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
	}
}

type instructionRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;index"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (instructionRow) TableName() string { return "instructions" }

func (i *instructionRow) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

func (i *instructionRow) toEntity() *entity.Instruction {
	return &entity.Instruction{
		ID:          i.ID,
		UserID:      i.UserID,
		Title:       i.Title,
		Description: i.Description,
		Status:      entity.TaskStatus(i.Status),
		CreatedAt:   i.CreatedAt,
	}
}

type taskRow struct {
	ID            string     `gorm:"column:id;primaryKey"`
	InstructionID string     `gorm:"column:instruction_id;index"`
	AdminID       string     `gorm:"column:admin_id"`
	Title         string     `gorm:"column:title"`
	Description   string     `gorm:"column:description"`
	Status        string     `gorm:"column:status"`
	Priority      string     `gorm:"column:priority"`
	DueDate       *time.Time `gorm:"column:due_date"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (taskRow) TableName() string { return "tasks" }

func (t *taskRow) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

func newTaskRow(task *entity.Task) *taskRow {
	return &taskRow{
		ID:            task.ID,
		InstructionID: task.InstructionID,
		AdminID:       task.AdminID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        string(task.Status),
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func (t *taskRow) toEntity() *entity.Task {
	return &entity.Task{
		ID:            t.ID,
		InstructionID: t.InstructionID,
		AdminID:       t.AdminID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        entity.TaskStatus(t.Status),
		Priority:      t.Priority,
		DueDate:       t.DueDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// AutoMigrate creates the tables for local databases and tests. The hosted
// schema is managed outside this service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&messageRow{}, &profileRow{}, &instructionRow{}, &taskRow{})
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(query string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(query)) + "%"
}
