package models

// Имена коллекций документного хранилища.
const (
	CollectionTeams        = "teams"
	CollectionPool         = "pool"
	CollectionJoinRequests = "joinRequests"
	CollectionInvites      = "invites"
	CollectionSubmissions  = "submissions"
	CollectionUsers        = "users"
)
