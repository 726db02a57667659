package views

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCache stores rendered GET responses per view path. Each path is one
// Redis hash whose fields are query strings, so invalidating a path drops
// every filtered variant of it at once.
type RedisCache struct {
	rdb      *redis.Client
	prefix   string
	ttl      time.Duration
	basePath string // stripped from request paths before keying, e.g. "/v1"
	maxBody  int
	log      *zap.Logger
}

type CacheOptions struct {
	Prefix   string
	TTL      time.Duration
	BasePath string
	MaxBody  int
}

func NewRedisCache(rdb *redis.Client, opts CacheOptions, log *zap.Logger) *RedisCache {
	if opts.Prefix == "" {
		opts.Prefix = "view"
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = 1 << 20
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisCache{
		rdb:      rdb,
		prefix:   opts.Prefix,
		ttl:      opts.TTL,
		basePath: strings.TrimRight(opts.BasePath, "/"),
		maxBody:  opts.MaxBody,
		log:      log,
	}
}

func (c *RedisCache) key(path string) string {
	return c.prefix + ":" + path
}

func (c *RedisCache) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = c.key(p)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Middleware serves GET requests from the cache and stores 200 responses.
func (c *RedisCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := c.key(c.viewPath(r))
		field := r.URL.RawQuery

		if b, err := c.rdb.HGet(ctx, key, field).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(b, &cached); err == nil {
				if cached.ContentType != "" {
					w.Header().Set("Content-Type", cached.ContentType)
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(cached.Status)
				_, _ = w.Write(cached.Body)
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			c.log.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}

		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK, limit: c.maxBody}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(cw, r)

		if cw.status != http.StatusOK || cw.overflow {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      cw.status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        cw.buf.Bytes(),
		})
		if err != nil {
			return
		}
		// Detached from the request so a client disconnect does not drop the write.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		pipe := c.rdb.TxPipeline()
		pipe.HSet(storeCtx, key, field, payload)
		pipe.Expire(storeCtx, key, c.ttl)
		if _, err := pipe.Exec(storeCtx); err != nil {
			c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
		}
	})
}

func (c *RedisCache) viewPath(r *http.Request) string {
	p := r.URL.Path
	if c.basePath != "" {
		p = strings.TrimPrefix(p, c.basePath)
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return canonicalPath(p)
}

// canonicalPath rewrites integer segments the way handlers parse them, so
// /rooms/05 and /rooms/+5 share the key of DetailPath(5).
func canonicalPath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		if seg == "" {
			continue
		}
		if n, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segs[i] = strconv.FormatInt(n, 10)
		}
	}
	return strings.Join(segs, "/")
}

type captureWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if !cw.overflow {
		if cw.buf.Len()+len(b) > cw.limit {
			cw.overflow = true
			cw.buf.Reset()
		} else {
			cw.buf.Write(b)
		}
	}
	return cw.ResponseWriter.Write(b)
}
