package models

import "time"

type Submission struct {
	ID           string    `json:"id"`
	HackathonID  string    `json:"hackathon_id"`
	TeamID       string    `json:"team_id"`
	RepoURL      string    `json:"repo_url"`
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Cutoff       time.Time `json:"cutoff"`
}
