package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL  = 5 * time.Minute
	redisPingTimeout = 5 * time.Second
	defaultRedisHost = "127.0.0.1"
	defaultRedisPort = "6379"
)

// newRedisClient connects and pings, so a misconfigured cache fails at
// startup and the server can fall back to running uncached.
func newRedisClient(cfg config.CacheConfig) (*redis.Client, time.Duration, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, 0, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, 0, fmt.Errorf("ping analytics cache at %s: %w", opts.Addr, err)
	}

	return client, cacheTTL(cfg), nil
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if cfg.AnalyticsTTLSeconds <= 0 {
		return defaultCacheTTL
	}
	return time.Duration(cfg.AnalyticsTTLSeconds) * time.Second
}

// buildRedisOptions prefers REDIS_URL and otherwise assembles the address
// from host and port.
func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = defaultRedisHost
	}
	if port == "" {
		port = defaultRedisPort
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// evictPrefix removes every cached analysis under prefix and reports how
// many entries went away.
func evictPrefix(ctx context.Context, client *redis.Client, prefix string, batchSize int64) (int, error) {
	var (
		cursor  uint64
		evicted int
	)
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", batchSize).Result()
		if err != nil {
			return evicted, fmt.Errorf("scan %q: %w", prefix, err)
		}

		if len(keys) > 0 {
			n, err := client.Del(ctx, keys...).Result()
			if err != nil {
				return evicted, fmt.Errorf("evict %q: %w", prefix, err)
			}
			evicted += int(n)
		}

		if cursor = next; cursor == 0 {
			return evicted, nil
		}
	}
}
