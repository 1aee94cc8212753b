package domain

import "time"

type PasswordResetStatus string

const (
	PasswordResetPending   PasswordResetStatus = "Pending"
	PasswordResetCompleted PasswordResetStatus = "Completed"
)

type PasswordResetRequest struct {
	ID          int64               `json:"id"`
	UserID      int64               `json:"userId"`
	Email       string              `json:"email"`
	Status      PasswordResetStatus `json:"status"`
	RequestedAt time.Time           `json:"requestedAt"`
	CompletedBy *int64              `json:"completedBy,omitempty"`
	CompletedAt *time.Time          `json:"completedAt,omitempty"`
}

type PasswordResetWithUser struct {
	PasswordResetRequest
	User UserBrief `json:"user"`
}
