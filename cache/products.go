// Package cache keeps the storefront's newest products in Redis.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/models"
)

const LatestKey = "products:latest"

const DefaultTTL = 10 * time.Minute

// LatestSource 快取失效時讀取最新商品的來源
type LatestSource interface {
	Latest(ctx context.Context) ([]models.Product, error)
}

type Products struct {
	rdb    *redis.Client
	source LatestSource
	ttl    time.Duration
}

func NewProducts(rdb *redis.Client, source LatestSource, ttl time.Duration) *Products {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Products{rdb: rdb, source: source, ttl: ttl}
}

// 查詢最新商品，先讀Redis，失敗或為空時從資料庫讀取並寫回Redis
func (p *Products) Latest(ctx context.Context) ([]models.Product, error) {
	products, err := p.read(ctx)
	if err != nil {
		log.Printf("無法從Redis讀取商品列表: %v\n", err)
	}
	if err == nil && len(products) > 0 {
		return products, nil
	}

	products, err = p.source.Latest(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.fill(ctx, products); err != nil {
		log.Printf("無法將商品資料加入Redis: %v\n", err)
	}
	return products, nil
}

func (p *Products) read(ctx context.Context) ([]models.Product, error) {
	members, err := p.rdb.ZRange(ctx, LatestKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(members))
	for _, member := range members {
		var product models.Product
		if err := json.Unmarshal([]byte(member), &product); err != nil {
			//資料格式不符時整個重新讀取
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// 分數為資料庫回傳的順序，讀取時依分數排序即為最新在前
func (p *Products) fill(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(products))
	for i, product := range products {
		productJSON, err := json.Marshal(product)
		if err != nil {
			return err
		}
		members = append(members, redis.Z{
			Score:  float64(i),
			Member: productJSON,
		})
	}

	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, LatestKey)
	pipe.ZAdd(ctx, LatestKey, members...)
	pipe.Expire(ctx, LatestKey, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// 商品或分類異動後清除快取
func (p *Products) Invalidate(ctx context.Context) {
	if err := p.rdb.Del(ctx, LatestKey).Err(); err != nil {
		log.Printf("無法將商品資料從Redis刪除: %v\n", err)
	}
}
