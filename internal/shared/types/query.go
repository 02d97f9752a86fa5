package types

import (
	"fmt"
	"strings"
)

// Mode selects which page a query cycle renders
type Mode string

const (
	ModeHome   Mode = "home"
	ModeSearch Mode = "search"
)

// ParseMode converts a user supplied mode, defaulting to search
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSearch:
		return ModeSearch, nil
	case ModeHome:
		return ModeHome, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Query is one submitted search; immutable once submitted
type Query struct {
	Text string `json:"text"`
	Mode Mode   `json:"mode"`
}

// Validate checks that a search query carries text
func (q Query) Validate() error {
	if q.Mode == ModeSearch && strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text required")
	}
	if len(q.Text) > MaxQueryLength {
		return fmt.Errorf("query exceeds maximum length of %d", MaxQueryLength)
	}
	return nil
}

// MaxQueryLength bounds query text forwarded to providers
const MaxQueryLength = 400
