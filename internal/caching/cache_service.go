package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"attendhq/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Aggregation caching. A cache miss is (nil, nil), never an error.
	GetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int) (*models.MonthlyStats, error)
	SetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int, stats *models.MonthlyStats, ttl time.Duration) error
	GetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int) ([]models.YearComparison, error)
	SetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int, comparison []models.YearComparison, ttl time.Duration) error

	// Cache invalidation
	InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error

	// Session management
	SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as a bare host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func monthlyStatsKey(organizationID uuid.UUID, month, year int) string {
	return fmt.Sprintf("attendhq:stats:%s:%d-%02d", organizationID.String(), year, month)
}

func yearComparisonKey(organizationID uuid.UUID, currentYear, previousYear int) string {
	return fmt.Sprintf("attendhq:compare:%s:%d-%d", organizationID.String(), currentYear, previousYear)
}

func (r *redisCacheService) GetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int) (*models.MonthlyStats, error) {
	data, err := r.client.Get(ctx, monthlyStatsKey(organizationID, month, year)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.MonthlyStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetMonthlyStats(ctx context.Context, organizationID uuid.UUID, month, year int, stats *models.MonthlyStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, monthlyStatsKey(organizationID, month, year), data, ttl).Err()
}

func (r *redisCacheService) GetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int) ([]models.YearComparison, error) {
	data, err := r.client.Get(ctx, yearComparisonKey(organizationID, currentYear, previousYear)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var comparison []models.YearComparison
	if err := json.Unmarshal(data, &comparison); err != nil {
		return nil, err
	}
	return comparison, nil
}

func (r *redisCacheService) SetYearComparison(ctx context.Context, organizationID uuid.UUID, currentYear, previousYear int, comparison []models.YearComparison, ttl time.Duration) error {
	data, err := json.Marshal(comparison)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, yearComparisonKey(organizationID, currentYear, previousYear), data, ttl).Err()
}

func (r *redisCacheService) InvalidateOrganization(ctx context.Context, organizationID uuid.UUID) error {
	patterns := []string{
		fmt.Sprintf("attendhq:stats:%s:*", organizationID.String()),
		fmt.Sprintf("attendhq:compare:%s:*", organizationID.String()),
	}
	for _, pattern := range patterns {
		keys, err := r.client.Keys(ctx, pattern).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return r.client.Set(ctx, "attendhq:session:"+sessionID, userID, ttl).Err()
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, "attendhq:session:"+sessionID).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := "attendhq:ratelimit:" + key
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}
	return count > int64(limit), nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
