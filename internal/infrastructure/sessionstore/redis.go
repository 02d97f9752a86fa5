package sessionstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/huggypanda/backend/internal/shared/id"
	"github.com/huggypanda/backend/internal/shared/types"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "session:"

// RedisOptions configures the Redis-backed store
type RedisOptions struct {
	Addr     string
	Username string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis stores tokens as expiring keys. Keys are a hash of the token so a
// dump of the keyspace does not leak live cookies.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	mint   func() (id.SessionToken, error)
}

// NewRedis connects a store to the given server
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisFromClient(client, opts.TTL)
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		mint:   id.NewSessionToken,
	}
}

// Key derives the storage key for a token
func Key(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Ping checks connectivity
func (s *Redis) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Create mints a token and stores it with the configured TTL
func (s *Redis) Create(ctx context.Context) (string, error) {
	token, err := s.mint()
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}

	created := strconv.FormatInt(time.Now().Unix(), 10)
	ok, err := s.client.SetNX(ctx, Key(token.String()), created, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !ok {
		return "", fmt.Errorf("token collision")
	}
	return token.String(), nil
}

// Validate reports whether a token exists and how long it has left.
// Malformed tokens are invalid without a round trip.
func (s *Redis) Validate(ctx context.Context, token string) (types.Validity, error) {
	if !id.IsSessionToken(token) {
		return types.Validity{}, nil
	}

	ttl, err := s.client.TTL(ctx, Key(token)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return types.Validity{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// go-redis reports a missing key as -2 and a key without expiry as -1
	switch {
	case ttl == -2:
		return types.Validity{}, nil
	case ttl < 0:
		return types.Validity{Valid: true}, nil
	default:
		return types.Validity{Valid: true, TTL: ttl}, nil
	}
}

// Revoke deletes a token
func (s *Redis) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, Key(token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool
func (s *Redis) Close() error {
	return s.client.Close()
}
