package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// EmployeeLocation is the cached last-known position of a delivery employee,
// kept hot so tracking reads do not hit the database on every poll.
type EmployeeLocation struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Employee location cache
func (c *Client) SetEmployeeLocation(employeeID uint, lat, lng float64, ttl time.Duration) error {
	ctx := context.Background()
	loc := EmployeeLocation{Latitude: lat, Longitude: lng, UpdatedAt: time.Now()}
	jsonData, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to marshal employee location: %w", err)
	}

	key := fmt.Sprintf("employee_location:%d", employeeID)
	return c.rdb.Set(ctx, key, jsonData, ttl).Err()
}

func (c *Client) GetEmployeeLocation(employeeID uint) (*EmployeeLocation, error) {
	ctx := context.Background()
	key := fmt.Sprintf("employee_location:%d", employeeID)
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("employee location not found")
		}
		return nil, fmt.Errorf("failed to get employee location: %w", err)
	}

	var loc EmployeeLocation
	if err := json.Unmarshal([]byte(val), &loc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal employee location: %w", err)
	}
	return &loc, nil
}

func (c *Client) DeleteEmployeeLocation(employeeID uint) error {
	ctx := context.Background()
	return c.rdb.Del(ctx, fmt.Sprintf("employee_location:%d", employeeID)).Err()
}

// Presence counters track how many live connections a user currently has.
func (c *Client) IncrementPresence(userID uint) error {
	ctx := context.Background()
	return c.rdb.Incr(ctx, fmt.Sprintf("presence:%d", userID)).Err()
}

func (c *Client) DecrementPresence(userID uint) error {
	ctx := context.Background()
	key := fmt.Sprintf("presence:%d", userID)
	n, err := c.rdb.Decr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n <= 0 {
		return c.rdb.Del(ctx, key).Err()
	}
	return nil
}

func (c *Client) IsOnline(userID uint) (bool, error) {
	ctx := context.Background()
	n, err := c.rdb.Exists(ctx, fmt.Sprintf("presence:%d", userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
