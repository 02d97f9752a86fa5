package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huggypanda/backend/internal/domain/notice"
	"github.com/huggypanda/backend/internal/domain/search"
	"github.com/huggypanda/backend/internal/domain/session"
	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
)

// Store is the session store served on /api/sessions
type Store interface {
	Create(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) (types.Validity, error)
}

// Sessions resolves the caller's session
type Sessions interface {
	EnsureSession(ctx context.Context, jar session.CookieJar, rep session.Reporter) types.Session
}

// Searcher runs query cycles
type Searcher interface {
	Submit(ctx context.Context, token string, q types.Query) (search.Cycle, bool)
}

// Suggester completes partial queries
type Suggester interface {
	Suggest(ctx context.Context, prefix string) ([]string, error)
}

// Options configures request handling
type Options struct {
	Cookie CookieOptions
	// SessionRequired refuses queries when no valid session exists
	SessionRequired bool
	Version         string
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store     Store
	sessions  Sessions
	searcher  Searcher
	suggester Suggester
	notices   *notice.Registry
	opts      Options
	logger    *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(store Store, sessions Sessions, searcher Searcher, notices *notice.Registry, opts Options) *Handlers {
	return &Handlers{
		store:    store,
		sessions: sessions,
		searcher: searcher,
		notices:  notices,
		opts:     opts,
		logger:   logging.NewNop(),
	}
}

// WithSuggester enables /api/suggest
func (h *Handlers) WithSuggester(s Suggester) *Handlers {
	h.suggester = s
	return h
}

// WithLogger sets the logger
func (h *Handlers) WithLogger(l *logging.Logger) *Handlers {
	h.logger = l.Named("http")
	return h
}

// Register mounts the routes on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:token", h.ValidateSession)
	api.GET("/session", h.Session)
	api.GET("/home", h.Home)
	api.POST("/search", h.Search)
	api.GET("/suggest", h.Suggest)
	api.GET("/notice", h.Notice)
	api.POST("/notice/:id/dismiss", h.DismissNotice)
}

// Health handles health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "huggypanda-search",
		"version": h.opts.Version,
	})
}

// CreateSession mints a token in the session store
func (h *Handlers) CreateSession(c *gin.Context) {
	token, err := h.store.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("session store create failed", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "session store unavailable")
		return
	}
	respond(c, http.StatusOK, gin.H{"token": token})
}

// ValidateSession reports whether a token is live
func (h *Handlers) ValidateSession(c *gin.Context) {
	v, err := h.store.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.logger.Warn("session store validate failed", zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "session store unavailable")
		return
	}
	respond(c, http.StatusOK, gin.H{
		"valid":       v.Valid,
		"ttl_seconds": int64(v.TTL.Seconds()),
	})
}

// Session resolves the caller's session, creating one if needed
func (h *Handlers) Session(c *gin.Context) {
	sess := h.ensure(c)
	if !sess.Valid {
		fail(c, http.StatusServiceUnavailable, session.CreationFailedMessage)
		return
	}
	respond(c, http.StatusOK, sess)
}

// Home runs a home page cycle
func (h *Handlers) Home(c *gin.Context) {
	h.run(c, types.Query{Mode: types.ModeHome})
}

// Search runs a search cycle
func (h *Handlers) Search(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	mode, err := types.ParseMode(req.Mode)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	q := types.Query{Text: strings.TrimSpace(req.Query), Mode: mode}
	if err := q.Validate(); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	h.run(c, q)
}

// Suggest returns query completions
func (h *Handlers) Suggest(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("q"))
	if prefix == "" || h.suggester == nil {
		respond(c, http.StatusOK, []string{})
		return
	}

	suggestions, err := h.suggester.Suggest(c.Request.Context(), prefix)
	if err != nil {
		h.logger.Warn("suggest failed", zap.Error(err))
		fail(c, http.StatusBadGateway, "suggestions unavailable")
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	respond(c, http.StatusOK, suggestions)
}

// Notice returns the caller's active notice, if any
func (h *Handlers) Notice(c *gin.Context) {
	key := h.noticeKey(c)
	if s, ok := h.notices.Lookup(key); ok {
		n, showing := s.Current()
		respond(c, http.StatusOK, noticePayload(n, showing))
		return
	}
	respond(c, http.StatusOK, noticePayload(types.Notice{}, false))
}

// DismissNotice clears the caller's notice
func (h *Handlers) DismissNotice(c *gin.Context) {
	s, ok := h.notices.Lookup(h.noticeKey(c))
	if !ok || !s.Dismiss(c.Param("id")) {
		fail(c, http.StatusNotFound, "no such notice")
		return
	}
	respond(c, http.StatusOK, gin.H{"dismissed": true})
}

func (h *Handlers) run(c *gin.Context, q types.Query) {
	sess := h.ensure(c)
	if !sess.Valid && h.opts.SessionRequired {
		fail(c, http.StatusServiceUnavailable, session.CreationFailedMessage)
		return
	}

	key := sess.Token
	if !sess.Valid {
		key = AnonymousKey(c.ClientIP())
	}

	cycle, fresh := h.searcher.Submit(c.Request.Context(), key, q)
	if !fresh {
		fail(c, http.StatusConflict, "superseded by a newer query")
		return
	}

	var current NoticePayload
	if s, ok := h.notices.Lookup(key); ok {
		current = noticePayload(s.Current())
	} else {
		current = noticePayload(types.Notice{}, false)
	}

	respond(c, http.StatusOK, gin.H{
		"layout": cycle.Layout,
		"notice": current,
	})
}

func (h *Handlers) ensure(c *gin.Context) types.Session {
	jar := newCookieJar(c, h.opts.Cookie)
	rep := lazyReporter{notices: h.notices, key: AnonymousKey(c.ClientIP())}
	return h.sessions.EnsureSession(c.Request.Context(), jar, rep)
}

// noticeKey reads the surface key without touching the session store
func (h *Handlers) noticeKey(c *gin.Context) string {
	if token, err := c.Cookie(h.opts.Cookie.Name); err == nil && token != "" {
		return token
	}
	return AnonymousKey(c.ClientIP())
}

// AnonymousKey is the notice and cycle key for a client without a session
func AnonymousKey(clientIP string) string {
	return "anon:" + clientIP
}

// lazyReporter creates the surface only when something is reported
type lazyReporter struct {
	notices *notice.Registry
	key     string
}

func (r lazyReporter) Report(source, message string) bool {
	return r.notices.Surface(r.key).Report(source, message)
}
