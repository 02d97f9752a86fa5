package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/shared/types"
	"go.uber.org/zap"
)

var (
	ErrSessionCreation   = errors.New("session creation failed")
	ErrSessionValidation = errors.New("session validation failed")
)

// CreationFailedMessage is what the user sees when no session could be made
const CreationFailedMessage = "Could not start a session. Some results may be unavailable."

// CookieJar is the client-side token holder for one request
type CookieJar interface {
	Token() string
	SetToken(token string)
	ClearToken()
}

// Creator mints a new session token
type Creator interface {
	Create(ctx context.Context) (string, error)
}

// Validator checks whether a token is still live
type Validator interface {
	Validate(ctx context.Context, token string) (types.Validity, error)
}

// Reporter receives user-visible failures
type Reporter interface {
	Report(source, message string) bool
}

// Options tunes the coordinator
type Options struct {
	// Staleness is how long a successful validation is trusted; zero
	// re-checks on every call.
	Staleness time.Duration
	// OnReplace is called when a token is discarded in favour of a new one
	OnReplace func(old, new string)
	// Now overrides the clock in tests
	Now func() time.Time
}

// Coordinator decides, per request, whether the client holds a usable
// session and provisions one if not.
type Coordinator struct {
	creator   Creator
	validator Validator
	opts      Options
	logger    *logging.Logger
	metrics   *monitoring.Metrics

	mu      sync.Mutex
	checked map[string]time.Time // Protected by mu
}

// NewCoordinator creates a coordinator over a store
func NewCoordinator(creator Creator, validator Validator, opts Options) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Coordinator{
		creator:   creator,
		validator: validator,
		opts:      opts,
		logger:    logging.NewNop(),
		checked:   make(map[string]time.Time),
	}
}

// WithLogger sets the logger
func (c *Coordinator) WithLogger(logger *logging.Logger) *Coordinator {
	c.logger = logger.Named("session")
	return c
}

// WithMetrics adds metrics tracking to the coordinator
func (c *Coordinator) WithMetrics(metrics *monitoring.Metrics) *Coordinator {
	c.metrics = metrics
	return c
}

// EnsureSession returns a valid session for the client behind jar,
// creating at most one new session per call. A creation failure is
// reported to rep and yields an invalid session.
func (c *Coordinator) EnsureSession(ctx context.Context, jar CookieJar, rep Reporter) types.Session {
	token := jar.Token()
	if token == "" {
		return c.create(ctx, jar, rep, "")
	}

	if c.recentlyValid(token) {
		return types.Session{Token: token, Valid: true, CheckedAt: c.opts.Now()}
	}

	validity, err := c.validator.Validate(ctx, token)
	switch {
	case err != nil:
		// Treated as invalid; only a failed recreation is user-visible
		c.recordValidation("error")
		c.logger.Warn("session validation failed",
			logging.Token(token),
			zap.Error(fmt.Errorf("%w: %v", ErrSessionValidation, err)))
	case validity.Valid:
		c.recordValidation("valid")
		c.markValid(token)
		return types.Session{Token: token, Valid: true, CheckedAt: c.opts.Now()}
	default:
		c.recordValidation("invalid")
		c.logger.Debug("session expired or unknown", logging.Token(token))
	}

	c.forget(token)
	jar.ClearToken()
	return c.create(ctx, jar, rep, token)
}

func (c *Coordinator) create(ctx context.Context, jar CookieJar, rep Reporter, old string) types.Session {
	token, err := c.creator.Create(ctx)
	if err != nil || token == "" {
		if err == nil {
			err = errors.New("empty token")
		}
		c.logger.Error("session creation failed", zap.Error(fmt.Errorf("%w: %v", ErrSessionCreation, err)))
		if rep != nil {
			rep.Report("session", CreationFailedMessage)
		}
		return types.Session{Valid: false, CheckedAt: c.opts.Now()}
	}

	jar.SetToken(token)
	c.markValid(token)
	if c.metrics != nil {
		c.metrics.IncSessionsCreated()
	}
	c.logger.Info("session created", logging.Token(token), zap.Bool("replaced", old != ""))

	if old != "" && c.opts.OnReplace != nil {
		c.opts.OnReplace(old, token)
	}

	return types.Session{Token: token, Valid: true, CheckedAt: c.opts.Now()}
}

func (c *Coordinator) recentlyValid(token string) bool {
	if c.opts.Staleness <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	at, ok := c.checked[token]
	if !ok {
		return false
	}
	if c.opts.Now().Sub(at) >= c.opts.Staleness {
		delete(c.checked, token)
		return false
	}
	return true
}

func (c *Coordinator) markValid(token string) {
	if c.opts.Staleness <= 0 {
		return
	}
	now := c.opts.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked[token] = now

	// Sweep expired entries so the map tracks only active clients
	for t, at := range c.checked {
		if now.Sub(at) >= c.opts.Staleness {
			delete(c.checked, t)
		}
	}
}

func (c *Coordinator) forget(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checked, token)
}

func (c *Coordinator) recordValidation(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordSessionValidation(outcome)
	}
}
