// Package id provides centralized ID generation for the backend.
//
// Identifiers are ULIDs so they sort by creation time in logs and in the
// session store. Each kind of identifier carries a short prefix:
//   - sess_*: session tokens (ULID plus extra entropy, never guessable)
//   - req_*:  request and trace identifiers
//   - span_*: tracing spans
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// SessionToken is an opaque session identifier handed to clients
type SessionToken string

// RequestID identifies an API request or trace
type RequestID string

// SpanID identifies one traced operation
type SpanID string

const (
	SessionPrefix = "sess"
	RequestPrefix = "req"
	SpanPrefix    = "span"

	// tokenEntropyBytes is appended to session tokens on top of the ULID
	tokenEntropyBytes = 10
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// Token creates a session token: prefix, ULID and a hex entropy suffix
func (g *Generator) Token() (SessionToken, error) {
	suffix := make([]byte, tokenEntropyBytes)

	g.entropyMu.Lock()
	_, err := io.ReadFull(g.entropy, suffix)
	g.entropyMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to read token entropy: %w", err)
	}

	return SessionToken(fmt.Sprintf("%s.%s", g.GenerateWithPrefix(SessionPrefix), hex.EncodeToString(suffix))), nil
}

// NewSessionToken mints a session token with the default generator
func NewSessionToken() (SessionToken, error) {
	return Default().Token()
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewSpanID generates a new span ID
func NewSpanID() SpanID {
	return SpanID(Default().GenerateWithPrefix(SpanPrefix))
}

func (t SessionToken) String() string { return string(t) }
func (r RequestID) String() string    { return string(r) }
func (s SpanID) String() string       { return string(s) }

// IsSessionToken checks the shape of a token without consulting the store
func IsSessionToken(token string) bool {
	head, suffix, ok := strings.Cut(token, ".")
	if !ok || len(suffix) != tokenEntropyBytes*2 {
		return false
	}
	if _, err := hex.DecodeString(suffix); err != nil {
		return false
	}
	prefix, raw, ok := strings.Cut(head, "_")
	if !ok || prefix != SessionPrefix {
		return false
	}
	_, err := ulid.Parse(raw)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed ULID
func Timestamp(prefixed string) (time.Time, error) {
	head, _, _ := strings.Cut(prefixed, ".")
	if _, raw, ok := strings.Cut(head, "_"); ok {
		head = raw
	}
	parsed, err := ulid.Parse(head)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
