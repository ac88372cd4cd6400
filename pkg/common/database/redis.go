package database

import (
	"context"
	"fmt"
	"time"

	"github.com/epiwatch/surveillance/pkg/common/config"
	"github.com/redis/go-redis/v9"
)

// NewRedis dials the configured Redis instance. The client is constructed
// once at startup and handed to consumers explicitly; a failed ping is
// returned to the caller so it can decide whether to degrade.
func NewRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return client, err
	}
	return client, nil
}
