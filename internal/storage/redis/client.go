// Package redis stores gateway sessions in Redis and publishes order status
// events on a Redis channel.
package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect builds a client from a host:port address or a redis:// URL and
// verifies it with a ping.
func Connect(ctx context.Context, address string) (*goredis.Client, error) {
	var client *goredis.Client
	if strings.HasPrefix(address, "redis://") || strings.HasPrefix(address, "rediss://") {
		opt, err := goredis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = goredis.NewClient(opt)
	} else {
		client = goredis.NewClient(&goredis.Options{Addr: address})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
