package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/medcabinet/api/internal/model"
)

const availableSlotsTTL = 30 * time.Second

// SlotCache keeps free-slot listings in Redis for the availability
// endpoint; the booking path invalidates on every ledger write.
type SlotCache struct {
	client *redis.Client
}

func NewSlotCache(redisURL string) (*SlotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SlotCache{client: client}, nil
}

func key(doctorID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("slots:free:%s:%s", doctorID, date.Format(model.DateOnly))
}

// GetAvailable returns the cached listing, or (nil, false) on miss.
func (c *SlotCache) GetAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Slot, bool) {
	data, err := c.client.Get(ctx, key(doctorID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []*model.Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false
	}
	return slots, true
}

func (c *SlotCache) SetAvailable(ctx context.Context, doctorID uuid.UUID, date time.Time, slots []*model.Slot) {
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(doctorID, date), data, availableSlotsTTL)
}

// Invalidate drops the cached listing after any ledger mutation.
func (c *SlotCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date time.Time) {
	c.client.Del(ctx, key(doctorID, date))
}

func (c *SlotCache) Close() error {
	return c.client.Close()
}
