package model

// ConversationContext is what one chat session remembers between turns: the
// court and date of the last successful availability check. Fields are empty
// when unknown.
type ConversationContext struct {
	CourtID string `json:"court_id,omitempty"`
	Date    string `json:"date,omitempty"`
	Court   *Court `json:"court,omitempty"`
}

// IsEmpty reports whether nothing is remembered
func (c *ConversationContext) IsEmpty() bool {
	return c == nil || (c.CourtID == "" && c.Date == "" && c.Court == nil)
}

// ChatRequest represents one user utterance sent to POST /api/v1/chat
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
	UserName  string `json:"user_name,omitempty"`
}
