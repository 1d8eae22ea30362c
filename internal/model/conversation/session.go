package conversation

import "time"

// Session captures one ordered conversation's state.
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	History   []Message `json:"history"`
}

// UserMessages returns the content of user-authored turns in order.
func (s Session) UserMessages() []string {
	var out []string
	for _, msg := range s.History {
		if msg.Role == RoleUser {
			out = append(out, msg.Content)
		}
	}
	return out
}

// Summary is the listing view of a persisted session.
type Summary struct {
	SessionID    string    `json:"session_id"`
	Filepath     string    `json:"filepath"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}
