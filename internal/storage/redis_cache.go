package storage

import (
	"context"
	"log/slog"
	"time"

	"bilifeed/internal/bilibili"
	"bilifeed/internal/credential"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a cache-aside metadata store over the Bilibili client.
// Display names and expanded article bodies change rarely, so both are kept
// in redis with generous TTLs.
type RedisCache struct {
	rdb    *redis.Client
	client *bilibili.Client
	creds  credential.Store
}

func NewRedisCache(rdb *redis.Client, client *bilibili.Client, creds credential.Store) *RedisCache {
	return &RedisCache{rdb: rdb, client: client, creds: creds}
}

func usernameKey(uid string) string {
	return "bilibili:username:" + uid
}

func articleKey(cvid string) string {
	return "bilibili:article:" + cvid
}

// Username resolves the display name for uid, fetching on cache miss. A redis
// outage degrades to a direct fetch.
func (s *RedisCache) Username(ctx context.Context, uid string) (string, error) {
	name, err := s.rdb.Get(ctx, usernameKey(uid)).Result()
	if err == nil && name != "" {
		return name, nil
	}
	if err != nil && err != redis.Nil {
		slog.Warn("storage: username cache read failed", "uid", uid, "error", err)
	}
	name, err = s.client.Username(ctx, uid)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, usernameKey(uid), name, 30*24*time.Hour).Err(); err != nil {
		slog.Warn("storage: username cache write failed", "uid", uid, "error", err)
	}
	return name, nil
}

// Article resolves the expanded body for a column article, fetching on cache
// miss. The fetch carries the cookie registered for uid; an unregistered uid
// falls back to an anonymous request.
func (s *RedisCache) Article(ctx context.Context, cvid, uid string) (string, error) {
	body, err := s.rdb.Get(ctx, articleKey(cvid)).Result()
	if err == nil && body != "" {
		return body, nil
	}
	if err != nil && err != redis.Nil {
		slog.Warn("storage: article cache read failed", "cvid", cvid, "error", err)
	}
	cookie := ""
	if s.creds != nil {
		if c, err := s.creds.Lookup(uid); err == nil {
			cookie = c
		}
	}
	body, err = s.client.Article(ctx, cvid, cookie)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, articleKey(cvid), body, 7*24*time.Hour).Err(); err != nil {
		slog.Warn("storage: article cache write failed", "cvid", cvid, "error", err)
	}
	return body, nil
}
