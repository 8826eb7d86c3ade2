package entity

import "time"

const RoleAdmin = "admin"

// User is the profile record of an app user as seen by admins.
type User struct {
	ID            string    `json:"id" firestore:"-"`
	Name          string    `json:"name" firestore:"name"`
	Email         string    `json:"email" firestore:"email"`
	Address       string    `json:"address,omitempty" firestore:"address"`
	BusinessField string    `json:"business_field,omitempty" firestore:"businessField"`
	Role          string    `json:"role,omitempty" firestore:"role,omitempty"`
	IsActive      bool      `json:"is_active" firestore:"isActive"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

// Identity is the verified caller behind a request.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Name   string `json:"name,omitempty"`
}
