package models

import "time"

const (
	// TeamCapacity - максимальное число участников команды.
	TeamCapacity = 3
	// MinTeamSize - команда из одного человека считается невалидной.
	MinTeamSize = 2
)

type Team struct {
	ID          string    `json:"id"`
	HackathonID string    `json:"hackathon_id"`
	MemberIDs   []string  `json:"member_ids"`
	Name        string    `json:"name,omitempty"`
	CreatorID   string    `json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	Wins        int       `json:"wins"`
}

// HasMember сообщает, состоит ли userID в команде.
func (t *Team) HasMember(userID string) bool {
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// OpenSlots - число свободных мест. Для переполненной команды - 0.
func (t *Team) OpenSlots() int {
	if n := TeamCapacity - len(t.MemberIDs); n > 0 {
		return n
	}
	return 0
}
