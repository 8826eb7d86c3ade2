package entity

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	SenderRoleUser  = "user"
	SenderRoleAdmin = "admin"

	FileTypeText     = "text"
	FileTypeImage    = "image"
	FileTypeDocument = "document"

	// EditedSuffix is appended to the text of every edited message.
	EditedSuffix = " (edited)"
)

type ChatMessage struct {
	ID         string    `json:"id" firestore:"-"`
	TaskID     string    `json:"task_id" firestore:"taskId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	SenderRole string    `json:"sender_role" firestore:"senderRole"`
	SenderName string    `json:"sender_name,omitempty" firestore:"senderName,omitempty"`
	Text       string    `json:"text" firestore:"text"`
	MediaURL   *string   `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	FileType   *string   `json:"file_type,omitempty" firestore:"fileType,omitempty"`
	FileName   *string   `json:"file_name,omitempty" firestore:"fileName,omitempty"`
	FileSize   *int64    `json:"file_size,omitempty" firestore:"fileSize,omitempty"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
	IsRead     bool      `json:"is_read" firestore:"isRead"`

	// Pending is set on optimistic messages the server has not acknowledged yet.
	Pending bool `json:"pending,omitempty" firestore:"-"`
}

// IsEdited reports whether the message carries the edit marker.
func (m ChatMessage) IsEdited() bool {
	return strings.HasSuffix(m.Text, EditedSuffix)
}

// MarshalJSON adds the edited flag.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	type chatMessage ChatMessage
	return json.Marshal(struct {
		chatMessage
		Edited bool `json:"edited"`
	}{chatMessage(m), m.IsEdited()})
}

// EditedText returns the stored text for an edit to newText.
func EditedText(newText string) string {
	return newText + EditedSuffix
}
