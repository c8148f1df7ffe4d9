package state

import (
	"context"
	"fmt"
	"strconv"

	"marketplace/aggregator/internal/domain"

	"github.com/redis/go-redis/v9"
)

type StateManager interface {
	GetLastProcessedPage(ctx context.Context, marketplace domain.Marketplace) (int, error)
	SetLastProcessedPage(ctx context.Context, marketplace domain.Marketplace, pageNumber int) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   "aggregator:progress:page:",
	}
}

func (s *redisStateManager) GetLastProcessedPage(ctx context.Context, marketplace domain.Marketplace) (int, error) {
	key := s.keyPrefix + marketplace.String()
	val, err := s.redisClient.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get last processed page for marketplace %s: %w", marketplace, err)
	}

	page, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse page number for marketplace %s: %w", marketplace, err)
	}

	return page, nil
}

func (s *redisStateManager) SetLastProcessedPage(ctx context.Context, marketplace domain.Marketplace, pageNumber int) error {
	key := s.keyPrefix + marketplace.String()
	err := s.redisClient.Set(ctx, key, pageNumber, 0).Err() // No expiration
	if err != nil {
		return fmt.Errorf("failed to set last processed page for marketplace %s: %w", marketplace, err)
	}
	return nil
}
