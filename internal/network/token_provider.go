package network

import (
	"context"
	"errors"
	"time"

	"github.com/android254/droidconke-feeds/internal/config"
	"github.com/android254/droidconke-feeds/internal/redis"
	"github.com/golang-jwt/jwt/v5"
	redisv9 "github.com/redis/go-redis/v9"
)

// TokenProvider supplies the bearer token for outgoing requests.
// ok is false when no token is available and the request goes out unauthenticated.
type TokenProvider interface {
	Token(ctx context.Context) (token string, ok bool)
}

type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(context.Context) (string, bool) {
	return p.token, p.token != ""
}

// ExpiringTokenProvider drops JWTs whose exp claim has passed.
// Tokens that are not JWTs are passed through untouched.
type ExpiringTokenProvider struct {
	next   TokenProvider
	parser *jwt.Parser
	now    func() time.Time
}

func NewExpiringTokenProvider(next TokenProvider) *ExpiringTokenProvider {
	return &ExpiringTokenProvider{
		next:   next,
		parser: jwt.NewParser(),
		now:    time.Now,
	}
}

func (p *ExpiringTokenProvider) Token(ctx context.Context) (string, bool) {
	token, ok := p.next.Token(ctx)
	if !ok || token == "" {
		return "", false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := p.parser.ParseUnverified(token, &claims); err != nil {
		return token, true
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.now()) {
		config.GetLogger().Warnw("Dropping expired API token", "expired_at", claims.ExpiresAt.Time)
		return "", false
	}
	return token, true
}

type tokenGetter interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
}

// RedisTokenProvider reads the token persisted under key on every call.
type RedisTokenProvider struct {
	client tokenGetter
	key    string
}

func NewRedisTokenProvider(client tokenGetter, key string) *RedisTokenProvider {
	return &RedisTokenProvider{client: client, key: key}
}

func (p *RedisTokenProvider) Token(ctx context.Context) (string, bool) {
	val, err := p.client.Get(ctx, p.key).Result()
	if err != nil {
		if !errors.Is(err, redisv9.Nil) {
			config.GetLogger().Errorw("Error reading API token from redis", "key", p.key, "error", err)
		}
		return "", false
	}
	return val, val != ""
}

// NewTokenProviderFromConfig picks the token source named by auth.token_store.
// Either source is wrapped so expired JWTs are never sent.
func NewTokenProviderFromConfig() TokenProvider {
	if config.GetTokenStore() == "redis" {
		return NewExpiringTokenProvider(NewRedisTokenProvider(redis.GetClient(), config.GetTokenKey()))
	}
	return NewExpiringTokenProvider(NewStaticTokenProvider(config.GetDroidconKEAPIToken()))
}
