package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/streakboard/pkg/config"
)

// connectTimeout bounds the startup ping
const connectTimeout = 5 * time.Second

// Client holds the optional L2 cache / shared rate-limit connection.
// A disabled client is valid: every helper in this package degrades to a no-op
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	addr    string
	enabled bool
}

// HealthStatus is the redis section of /health
type HealthStatus struct {
	Enabled      bool          `json:"enabled"`
	Healthy      bool          `json:"healthy"`
	Addr         string        `json:"addr,omitempty"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
}

// New connects to redis when REDIS_ENABLED is set and fails fast if the
// server does not answer
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	c := &Client{
		rdb: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}),
		addr:    net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
		enabled: true,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		c.rdb.Close()
		return nil, err
	}

	return c, nil
}

// Ping checks the connection. Always nil when redis is disabled
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

// HealthCheck reports connection health for /health.
// 비활성화 상태는 정상으로 취급 (L2 캐시는 선택 사항)
func (c *Client) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{Enabled: c.enabled, Addr: c.addr}
	if !c.enabled {
		status.Healthy = true
		return status, nil
	}

	start := time.Now()
	if err := c.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)
	status.Healthy = true

	return status, nil
}

// Close closes the connection; no-op when disabled
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the go-redis client to the cache and rate limiter
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
