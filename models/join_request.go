package models

import "time"

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "pending"
	JoinRequestAccepted JoinRequestStatus = "accepted"
	JoinRequestDeclined JoinRequestStatus = "declined"
)

type JoinRequest struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	TeamID    string            `json:"team_id"`
	Status    JoinRequestStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
