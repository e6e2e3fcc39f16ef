package models

type UserProfile struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	PhotoURL       string `json:"photo_url,omitempty"`
	PhotoKey       string `json:"-"`
	GithubHandle   string `json:"github_handle,omitempty"`
	LinkedInHandle string `json:"linkedin_handle,omitempty"`
	Visible        bool   `json:"visible"`
}

// Session - текущий пользователь запроса. nil означает анонимного посетителя.
type Session struct {
	UserID string `json:"user_id"`
}

// Authenticated безопасно вызывать на nil.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}
