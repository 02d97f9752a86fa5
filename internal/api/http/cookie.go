package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieOptions configures the session cookie
type CookieOptions struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// cookieJar adapts a gin request/response pair to session.CookieJar. A
// token written during the request is visible to later reads.
type cookieJar struct {
	c     *gin.Context
	opts  CookieOptions
	token string
	read  bool
}

func newCookieJar(c *gin.Context, opts CookieOptions) *cookieJar {
	return &cookieJar{c: c, opts: opts}
}

func (j *cookieJar) Token() string {
	if !j.read {
		j.token, _ = j.c.Cookie(j.opts.Name)
		j.read = true
	}
	return j.token
}

func (j *cookieJar) SetToken(token string) {
	j.token, j.read = token, true
	j.c.SetSameSite(http.SameSiteLaxMode)
	j.c.SetCookie(j.opts.Name, token, int(j.opts.MaxAge/time.Second), "/", "", j.opts.Secure, true)
}

func (j *cookieJar) ClearToken() {
	j.token, j.read = "", true
	j.c.SetSameSite(http.SameSiteLaxMode)
	j.c.SetCookie(j.opts.Name, "", -1, "/", "", j.opts.Secure, true)
}
