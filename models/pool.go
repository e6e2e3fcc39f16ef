package models

import "time"

// PoolEntry - пользователь, доступный для набора в команды в рамках одного хакатона.
type PoolEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	HackathonID string    `json:"hackathon_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PoolEntryID - ключ документа пула: одна запись на пару (пользователь, хакатон).
func PoolEntryID(userID, hackathonID string) string {
	return userID + "_" + hackathonID
}
