package types

// SearchRequest represents a query submission
type SearchRequest struct {
	Query string `json:"q" binding:"required"`
	Mode  string `json:"mode"`
}

// WSMessage represents a WebSocket message from the page
type WSMessage struct {
	Type  string `json:"type"`
	Query string `json:"q,omitempty"`
	Mode  string `json:"mode,omitempty"`
	ID    string `json:"id,omitempty"`
}

// Envelope is the response shape shared by every endpoint and collaborator
type Envelope struct {
	Success  bool        `json:"success"`
	Response interface{} `json:"response"`
}
