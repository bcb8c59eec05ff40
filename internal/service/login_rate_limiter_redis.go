package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Ventana deslizante: cada intento fallido o en curso es un miembro del ZSET
// con su timestamp en ms. Devuelve 1 si el intento entra, 0 si no.
const redisLoginAttemptScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)
if redis.call("ZCARD", key) >= tonumber(ARGV[3]) then
  return 0
end
redis.call("ZADD", key, now, ARGV[4])
redis.call("PEXPIRE", key, window)
return 1
`

type redisLoginClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisLoginRateLimiter comparte los intentos entre instancias. Las claves
// llevan el hash del email para no guardar direcciones en Redis.
type redisLoginRateLimiter struct {
	client redisLoginClient
	window time.Duration
	max    int
	prefix string
	now    func() time.Time
}

func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "login:attempts:",
		now:    time.Now,
	}
}

func (l *redisLoginRateLimiter) key(email string) string {
	sum := sha256.Sum256([]byte(email))
	return l.prefix + hex.EncodeToString(sum[:])
}

// Allow registra un intento. Si Redis falla deja pasar: el login sigue
// protegido por bcrypt.
func (l *redisLoginRateLimiter) Allow(email string) bool {
	if l == nil || l.client == nil {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	allowed, err := l.client.Eval(ctx, redisLoginAttemptScript, []string{l.key(email)},
		l.now().UnixMilli(),
		l.window.Milliseconds(),
		l.max,
		uuid.NewString(),
	).Int()
	if err != nil {
		return true
	}
	return allowed == 1
}

// Reset borra los intentos acumulados tras un login exitoso.
func (l *redisLoginRateLimiter) Reset(email string) {
	if l == nil || l.client == nil {
		return
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = l.client.Del(ctx, l.key(email)).Err()
}
