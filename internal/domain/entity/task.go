package entity

import (
	"encoding/json"
	"time"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID            string     `json:"id" firestore:"-"`
	InstructionID string     `json:"instruction_id" firestore:"instructionId"`
	AdminID       string     `json:"admin_id,omitempty" firestore:"adminId"`
	Title         string     `json:"title" firestore:"title"`
	Description   string     `json:"description" firestore:"description"`
	Status        TaskStatus `json:"status" firestore:"status"`
	Priority      string     `json:"priority" firestore:"priority"`
	DueDate       *time.Time `json:"due_date,omitempty" firestore:"dueDate,omitempty"`
	CreatedAt     time.Time  `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time  `json:"updated_at" firestore:"updatedAt"`
}

// MarshalJSON adds the display name of the status.
func (t Task) MarshalJSON() ([]byte, error) {
	type task Task
	return json.Marshal(struct {
		task
		StatusDisplay string `json:"status_display"`
	}{task(t), t.Status.DisplayName()})
}
