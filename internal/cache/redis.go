package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/redis/go-redis/v9"
)

const productsKey = "products:all"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:     client,
		cartTTL:    15 * time.Minute,
		productTTL: time.Minute,
	}
}

type RedisCache struct {
	client     *redis.Client
	cartTTL    time.Duration
	productTTL time.Duration
}

func (r *RedisCache) GetCart(ctx context.Context, accountID string) (domain.Cart, error) {
	var cart domain.Cart
	if err := r.get(ctx, cartKey(accountID), &cart); err != nil {
		return nil, err
	}
	if cart == nil {
		cart = domain.Cart{}
	}
	return cart, nil
}

func (r *RedisCache) SetCart(ctx context.Context, accountID string, cart domain.Cart) error {
	// Jitter spreads expiry so carts cached together do not expire together
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	return r.set(ctx, cartKey(accountID), cart, r.cartTTL+jitter)
}

func (r *RedisCache) DeleteCart(ctx context.Context, accountID string) error {
	return r.del(ctx, cartKey(accountID))
}

func (r *RedisCache) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.get(ctx, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisCache) SetProducts(ctx context.Context, products []domain.Product) error {
	return r.set(ctx, productsKey, products, r.productTTL)
}

func (r *RedisCache) InvalidateProducts(ctx context.Context) error {
	return r.del(ctx, productsKey)
}

func (r *RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cartKey(accountID string) string {
	return fmt.Sprintf("cart:%s", accountID)
}
