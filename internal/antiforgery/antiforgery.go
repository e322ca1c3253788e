package antiforgery

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"go-payway/internal/shared/apperror"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	FormField  = "__RequestVerificationToken"
	HeaderName = "X-CSRF-Token"

	keyPrefix = "antiforgery:"
	tokenSize = 32
)

var (
	ErrTokenMissing = apperror.New(
		apperror.CodeAntiForgery,
		"Anti-forgery token is missing",
		http.StatusBadRequest,
	)
	ErrTokenInvalid = apperror.New(
		apperror.CodeAntiForgery,
		"Anti-forgery token is invalid",
		http.StatusBadRequest,
	)
)

//go:generate mockgen -source=antiforgery.go -destination=mock/antiforgery_mock.go -package=mock
type Store interface {
	// Issue returns the token bound to sessionID, minting one if none is live.
	Issue(ctx context.Context, sessionID string) (string, error)
	Validate(ctx context.Context, sessionID, token string) error
}

type RedisStore struct {
	rdb      *redis.Client
	ttl      time.Duration
	newToken func() (string, error)
	logger   *zap.Logger
}

type Option func(*RedisStore)

func WithTokenGenerator(fn func() (string, error)) Option {
	return func(s *RedisStore) { s.newToken = fn }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *RedisStore) { s.logger = logger }
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration, opts ...Option) *RedisStore {
	s := &RedisStore{
		rdb:      rdb,
		ttl:      ttl,
		newToken: randomToken,
		logger:   zap.L().Named("antiforgery.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomToken() (string, error) {
	b := make([]byte, tokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *RedisStore) Issue(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrTokenInvalid
	}

	existing, err := s.rdb.Get(ctx, key(sessionID)).Result()
	if err == nil && existing != "" {
		return existing, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}

	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, key(sessionID), token, s.ttl).Err(); err != nil {
		return "", err
	}

	s.logger.Debug("anti-forgery token issued", zap.String("session", sessionID))
	return token, nil
}

func (s *RedisStore) Validate(ctx context.Context, sessionID, token string) error {
	if token == "" {
		return ErrTokenMissing
	}
	if sessionID == "" {
		return ErrTokenInvalid
	}

	stored, err := s.rdb.Get(ctx, key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrTokenInvalid
	}
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(token)) != 1 {
		return ErrTokenInvalid
	}
	return nil
}
