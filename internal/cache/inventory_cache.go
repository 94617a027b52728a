package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockpilot/internal/config"
	"github.com/andresuchdata/stockpilot/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	inventoryKeyPrefix     = "inventory_analytics"
	inventoryScanBatchSize = 100
	allScopes              = "_all"
)

// InventoryKey identifies one cached analysis: the scope, the calendar day
// the series are anchored to, and the exact inputs that were analyzed.
type InventoryKey struct {
	Scope       string
	Date        time.Time
	Fingerprint string
}

// InventoryCache stores analyzed inventories. Results are a pure function of
// the key, so entries never need to be updated, only expired.
type InventoryCache interface {
	GetInventory(ctx context.Context, key InventoryKey) ([]domain.AnalyzedProduct, bool, error)
	SetInventory(ctx context.Context, key InventoryKey, items []domain.AnalyzedProduct) error
	InvalidateScope(ctx context.Context, scope string) error
	InvalidateAll(ctx context.Context) error
}

type redisInventoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopInventoryCache struct{}

func NewInventoryCache(cfg config.CacheConfig) (InventoryCache, error) {
	if !cfg.Enabled {
		return &noopInventoryCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisInventoryCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopInventoryCache() InventoryCache {
	return &noopInventoryCache{}
}

func (c *redisInventoryCache) GetInventory(ctx context.Context, key InventoryKey) ([]domain.AnalyzedProduct, bool, error) {
	payload, err := c.client.Get(ctx, buildInventoryKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.AnalyzedProduct
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode inventory analytics cache: %w", err)
	}

	return items, true, nil
}

func (c *redisInventoryCache) SetInventory(ctx context.Context, key InventoryKey, items []domain.AnalyzedProduct) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode inventory analytics cache: %w", err)
	}

	if err := c.client.Set(ctx, buildInventoryKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisInventoryCache) InvalidateScope(ctx context.Context, scope string) error {
	return c.evict(ctx, scopePrefix(scope))
}

func (c *redisInventoryCache) InvalidateAll(ctx context.Context) error {
	return c.evict(ctx, inventoryKeyPrefix+":")
}

func (c *redisInventoryCache) evict(ctx context.Context, prefix string) error {
	n, err := evictPrefix(ctx, c.client, prefix, inventoryScanBatchSize)
	if n > 0 {
		log.Debug().Str("prefix", prefix).Int("evicted", n).Msg("inventory analytics evicted")
	}
	return err
}

func (n *noopInventoryCache) GetInventory(ctx context.Context, key InventoryKey) ([]domain.AnalyzedProduct, bool, error) {
	return nil, false, nil
}

func (n *noopInventoryCache) SetInventory(ctx context.Context, key InventoryKey, items []domain.AnalyzedProduct) error {
	return nil
}

func (n *noopInventoryCache) InvalidateScope(ctx context.Context, scope string) error {
	return nil
}

func (n *noopInventoryCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func scopePrefix(scope string) string {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		scope = allScopes
	}
	return fmt.Sprintf("%s:%s:", inventoryKeyPrefix, scope)
}

func buildInventoryKey(key InventoryKey) string {
	return scopePrefix(key.Scope) + key.Date.Format("20060102") + ":" + key.Fingerprint
}

// Fingerprint hashes the analysis inputs of products in list order. Urgency
// ties keep input order, so a reordered listing is a different result.
func Fingerprint(products []domain.ProductRecord) string {
	parts := make([]string, 0, len(products))
	for _, p := range products {
		price := "default"
		if p.Price != nil {
			price = p.Price.String()
		}
		parts = append(parts, strings.Join([]string{
			p.ID,
			p.Scope,
			p.Name,
			price,
			strconv.Itoa(p.Quantity),
			strconv.Itoa(p.IncomingStock),
		}, "\x1f"))
	}

	if len(parts) == 0 {
		return "empty"
	}

	sum := sha1.Sum([]byte(strings.Join(parts, "\x1e")))
	return hex.EncodeToString(sum[:])
}
