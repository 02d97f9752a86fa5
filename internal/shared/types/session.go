package types

import "time"

// Session is the client's session state; replaced, never patched
type Session struct {
	Token     string    `json:"token,omitempty"`
	Valid     bool      `json:"valid"`
	CheckedAt time.Time `json:"checked_at"`
}

// Validity is the session store's answer for one token
type Validity struct {
	Valid bool          `json:"valid"`
	TTL   time.Duration `json:"-"`
}

// Notice is the single user-visible error notification
type Notice struct {
	ID       string    `json:"id"`
	Message  string    `json:"message"`
	Active   bool      `json:"active"`
	Source   string    `json:"source,omitempty"`
	RaisedAt time.Time `json:"raised_at"`
}

// Presentation tells the renderer how a notice is shown
type Presentation struct {
	Placement string `json:"placement"`
	Size      string `json:"size"`
	Dismiss   string `json:"dismiss"`
}

// NoticePresentation is the fixed rendering contract for notices
var NoticePresentation = Presentation{
	Placement: "top-center",
	Size:      "small",
	Dismiss:   "OK",
}
