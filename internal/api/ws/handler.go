package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/huggypanda/backend/internal/domain/notice"
	"github.com/huggypanda/backend/internal/domain/search"
	"github.com/huggypanda/backend/internal/domain/session"
	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware governs origins
	},
}

// Sessions resolves the caller's session
type Sessions interface {
	EnsureSession(ctx context.Context, jar session.CookieJar, rep session.Reporter) types.Session
}

// Engine runs and publishes query cycles
type Engine interface {
	Submit(ctx context.Context, token string, q types.Query) (search.Cycle, bool)
	Latest(token string) (types.LayoutBundle, bool)
	Subscribe(token string, fn search.LayoutListener) func()
}

// Options configures the stream
type Options struct {
	CookieName      string
	CookieSecure    bool
	CookieMaxAge    time.Duration
	SessionRequired bool
}

// Event is a server → page message
type Event struct {
	Type         string              `json:"type"`
	Session      *types.Session      `json:"session,omitempty"`
	Notice       *types.Notice       `json:"notice,omitempty"`
	Presentation *types.Presentation `json:"presentation,omitempty"`
	Layout       *types.LayoutBundle `json:"layout,omitempty"`
	Message      string              `json:"message,omitempty"`
	Timestamp    int64               `json:"timestamp"`
}

// Handler manages WebSocket connections
type Handler struct {
	sessions Sessions
	engine   Engine
	notices  *notice.Registry
	opts     Options
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(sessions Sessions, engine Engine, notices *notice.Registry, opts Options) *Handler {
	return &Handler{
		sessions: sessions,
		engine:   engine,
		notices:  notices,
		opts:     opts,
		logger:   logging.NewNop(),
	}
}

// WithMetrics adds metrics tracking to the handler
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// WithLogger sets the logger
func (h *Handler) WithLogger(l *logging.Logger) *Handler {
	h.logger = l.Named("ws")
	return h
}

// HandleConnection resolves the session, upgrades, then pushes notice and
// layout events while serving search and dismiss messages. The session is
// re-checked before every search.
func (h *Handler) HandleConnection(c *gin.Context) {
	header := http.Header{}
	jar := &headerJar{req: c.Request, header: header, opts: h.opts}
	anon := "anon:" + c.ClientIP()
	rep := reporter{notices: h.notices, key: anon}

	sess := h.sessions.EnsureSession(c.Request.Context(), jar, rep)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, header)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	// Cookie writes after the upgrade only move the jar's token; the page
	// learns about a replacement through the session event.
	jar.upgraded = true

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	var cycles sync.WaitGroup
	defer func() {
		cancel()
		cycles.Wait()
	}()

	cl := &client{conn: conn, metrics: h.metrics}
	cl.send(Event{Type: "session", Session: &sess})

	subs := &subscriptions{notices: h.notices, engine: h.engine, client: cl}
	subs.bind(surfaceKey(sess, anon))
	defer subs.release()

	if latest, ok := h.engine.Latest(subs.key); ok {
		cl.send(Event{Type: "layout", Layout: &latest})
	}

	for {
		var msg types.WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		switch msg.Type {
		case "search":
			q, err := parseQuery(msg)
			if err != nil {
				cl.sendError(err.Error())
				continue
			}

			next := h.sessions.EnsureSession(ctx, jar, rep)
			if next.Token != sess.Token || next.Valid != sess.Valid {
				h.logger.Debug("session changed on stream",
					logging.Token(sess.Token), zap.Bool("valid", next.Valid))
				cl.send(Event{Type: "session", Session: &next})
			}
			sess = next
			if key := surfaceKey(sess, anon); key != subs.key {
				subs.bind(key)
			}

			if !sess.Valid && h.opts.SessionRequired {
				cl.sendError(session.CreationFailedMessage)
				continue
			}
			key := subs.key
			cycles.Add(1)
			go func() {
				defer cycles.Done()
				// Published layouts reach this client through the subscription
				h.engine.Submit(ctx, key, q)
			}()
		case "dismiss":
			if !h.notices.Surface(subs.key).Dismiss(msg.ID) {
				cl.sendError("no such notice")
			}
		case "ping":
			cl.send(Event{Type: "pong"})
		default:
			cl.sendError("unknown message type")
		}
	}
}

// surfaceKey is the notice and cycle key for sess
func surfaceKey(sess types.Session, anon string) string {
	if !sess.Valid {
		return anon
	}
	return sess.Token
}

// subscriptions holds the notice and layout listeners for one key
type subscriptions struct {
	notices *notice.Registry
	engine  Engine
	client  *client
	key     string
	cancel  []func()
}

// bind moves both listeners to key. A showing notice on the new surface
// is replayed.
func (s *subscriptions) bind(key string) {
	s.release()
	s.key = key
	cl := s.client
	s.cancel = append(s.cancel,
		s.notices.Surface(key).Subscribe(func(n types.Notice) {
			p := types.NoticePresentation
			cl.send(Event{Type: "notice", Notice: &n, Presentation: &p})
		}),
		s.engine.Subscribe(key, func(l types.LayoutBundle) {
			cl.send(Event{Type: "layout", Layout: &l})
		}),
	)
}

func (s *subscriptions) release() {
	for _, cancel := range s.cancel {
		cancel()
	}
	s.cancel = nil
}

func parseQuery(msg types.WSMessage) (types.Query, error) {
	mode, err := types.ParseMode(msg.Mode)
	if err != nil {
		return types.Query{}, err
	}
	q := types.Query{Text: strings.TrimSpace(msg.Query), Mode: mode}
	if err := q.Validate(); err != nil {
		return types.Query{}, err
	}
	return q, nil
}

// client serialises writes; gorilla allows one concurrent writer
type client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	metrics *monitoring.Metrics
}

func (c *client) send(ev Event) error {
	ev.Timestamp = time.Now().Unix()

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(ev); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", ev.Type)
	}
	return nil
}

func (c *client) sendError(msg string) error {
	return c.send(Event{Type: "error", Message: msg})
}

// headerJar collects cookie changes into the upgrade response headers
type headerJar struct {
	req    *http.Request
	header http.Header
	opts   Options
	token  string
	read   bool
	// upgraded stops header writes once the handshake response is sent
	upgraded bool
}

func (j *headerJar) Token() string {
	if !j.read {
		if ck, err := j.req.Cookie(j.opts.CookieName); err == nil {
			j.token = ck.Value
		}
		j.read = true
	}
	return j.token
}

func (j *headerJar) SetToken(token string) {
	j.token, j.read = token, true
	j.write(token, int(j.opts.CookieMaxAge/time.Second))
}

func (j *headerJar) ClearToken() {
	j.token, j.read = "", true
	j.write("", -1)
}

func (j *headerJar) write(value string, maxAge int) {
	if j.upgraded {
		return
	}
	ck := &http.Cookie{
		Name:     j.opts.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   j.opts.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	j.header.Add("Set-Cookie", ck.String())
}

type reporter struct {
	notices *notice.Registry
	key     string
}

func (r reporter) Report(source, message string) bool {
	return r.notices.Surface(r.key).Report(source, message)
}
