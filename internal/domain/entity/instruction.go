package entity

import (
	"encoding/json"
	"time"
)

type Instruction struct {
	ID          string     `json:"id" firestore:"-"`
	UserID      string     `json:"user_id" firestore:"userId"`
	Title       string     `json:"title" firestore:"title"`
	Description string     `json:"description" firestore:"description"`
	Status      TaskStatus `json:"status" firestore:"status"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
}

func (i Instruction) MarshalJSON() ([]byte, error) {
	type instruction Instruction
	return json.Marshal(struct {
		instruction
		StatusDisplay string `json:"status_display"`
	}{instruction(i), i.Status.DisplayName()})
}
