package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pos-service/models"

	"github.com/redis/go-redis/v9"
)

// CartStore holds the active cart for each terminal session.
type CartStore interface {
	GetCart(ctx context.Context, terminalID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, terminalID string) error
}

type RedisCartStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCartStore) getKey(terminalID string) string {
	return fmt.Sprintf("cart:terminal:%s", terminalID)
}

// GetCart returns the cart for a terminal, or nil when none exists.
func (r *RedisCartStore) GetCart(ctx context.Context, terminalID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.getKey(terminalID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(data), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *RedisCartStore) SaveCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.getKey(cart.TerminalID), data, r.ttl).Err()
}

func (r *RedisCartStore) DeleteCart(ctx context.Context, terminalID string) error {
	return r.client.Del(ctx, r.getKey(terminalID)).Err()
}
