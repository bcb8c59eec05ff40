package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"scholarship-finder/internal/domain"
)

// SessionCache guarda identidades resueltas por token durante un TTL corto.
type SessionCache interface {
	Get(token string) (domain.Identity, bool, error)
	Set(identity domain.Identity, ttl time.Duration) error
	Delete(token string) error
}

type cachedIdentity struct {
	identity  domain.Identity
	expiresAt time.Time
}

// memorySessionCache barre las entradas vencidas como mucho una vez por
// pruneEvery, al escribir.
type memorySessionCache struct {
	mu         sync.Mutex
	items      map[string]cachedIdentity
	pruneEvery time.Duration
	lastPrune  time.Time
	now        func() time.Time
}

func NewMemorySessionCache() SessionCache {
	return &memorySessionCache{
		items:      make(map[string]cachedIdentity),
		pruneEvery: time.Minute,
		now:        time.Now,
	}
}

func (c *memorySessionCache) Get(token string) (domain.Identity, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[token]
	if !ok {
		return domain.Identity{}, false, nil
	}
	if c.now().After(item.expiresAt) {
		delete(c.items, token)
		return domain.Identity{}, false, nil
	}
	return item.identity, true, nil
}

func (c *memorySessionCache) Set(identity domain.Identity, ttl time.Duration) error {
	if strings.TrimSpace(identity.SessionToken) == "" || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.prune(now)
	c.items[identity.SessionToken] = cachedIdentity{
		identity:  identity,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (c *memorySessionCache) prune(now time.Time) {
	if now.Sub(c.lastPrune) < c.pruneEvery {
		return
	}
	c.lastPrune = now
	for token, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, token)
		}
	}
}

func (c *memorySessionCache) Delete(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, token)
	return nil
}

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionCache struct {
	client redisKVClient
	prefix string
}

func NewRedisSessionCache(client *redis.Client) SessionCache {
	if client == nil {
		return nil
	}
	return &redisSessionCache{
		client: client,
		prefix: "auth:session:",
	}
}

// key no expone el token en claro dentro de Redis.
func (c *redisSessionCache) key(token string) string {
	return c.prefix + domain.SessionHandle(token)
}

func (c *redisSessionCache) Get(token string) (domain.Identity, bool, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Identity{}, false, nil
		}
		return domain.Identity{}, false, err
	}
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return domain.Identity{}, false, err
	}
	// SessionToken no se serializa.
	identity.SessionToken = token
	return identity, true, nil
}

func (c *redisSessionCache) Set(identity domain.Identity, ttl time.Duration) error {
	token := strings.TrimSpace(identity.SessionToken)
	if token == "" || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Set(ctx, c.key(token), raw, ttl).Err()
}

func (c *redisSessionCache) Delete(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return c.client.Del(ctx, c.key(token)).Err()
}
