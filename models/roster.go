package models

import "time"

// RosterTeam - команда в том виде, в котором её показывает список.
type RosterTeam struct {
	Team
	OpenSlots      int  `json:"open_slots"`
	CanRequestJoin bool `json:"can_request_join"`
}

// Roster - состояние страницы команд одного хакатона для конкретного зрителя.
type Roster struct {
	HackathonID string       `json:"hackathon_id"`
	Cutoff      time.Time    `json:"cutoff"`
	Open        []RosterTeam `json:"open"`
	Full        []RosterTeam `json:"full"`
	// Hidden - команды, не попавшие ни в open, ни в full (меньше 2 или больше 3 участников).
	Hidden   []Team `json:"hidden"`
	MyTeamID string `json:"my_team_id,omitempty"`
	IsInPool bool   `json:"is_in_pool"`
}

// EmptyRoster - состояние, в которое деградирует список при ошибке чтения.
func EmptyRoster(hackathonID string) *Roster {
	return &Roster{
		HackathonID: hackathonID,
		Open:        []RosterTeam{},
		Full:        []RosterTeam{},
		Hidden:      []Team{},
	}
}
