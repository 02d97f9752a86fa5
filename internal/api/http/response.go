package http

import (
	"github.com/gin-gonic/gin"
	"github.com/huggypanda/backend/internal/shared/types"
)

// respond writes the shared envelope with a payload
func respond(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, types.Envelope{Success: true, Response: payload})
}

// fail writes the shared envelope with an error message
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, types.Envelope{Success: false, Response: message})
}

// NoticePayload pairs a notice with its presentation contract
type NoticePayload struct {
	Notice       *types.Notice      `json:"notice"`
	Presentation types.Presentation `json:"presentation"`
}

func noticePayload(n types.Notice, ok bool) NoticePayload {
	p := NoticePayload{Presentation: types.NoticePresentation}
	if ok {
		p.Notice = &n
	}
	return p
}
