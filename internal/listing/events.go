package listing

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// EventChannel is the Redis pub/sub channel the Gateway subscribes to for
// SSE forwarding.
const EventChannel = "EVENT_LISTING_CHANGED"

// Event types.
const (
	EventStatusChanged   = "LISTING_STATUS_CHANGED"
	EventFeaturedChanged = "LISTING_FEATURED_CHANGED"
	EventDeleted         = "LISTING_DELETED"
)

// Event is the JSON payload published after a successful mutation.
type Event struct {
	Type           string `json:"type"`
	ListingID      string `json:"listingId"`
	OrganizationID string `json:"organizationId"`
	Status         Status `json:"status,omitempty"`
	IsFeatured     bool   `json:"isFeatured"`
}

// EventPublisher emits mutation events. Publish failures are non-fatal to the
// mutation that triggered them.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

// RedisPublisher publishes events on the shared Redis instance.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher bound to rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals e and publishes it on EventChannel.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, EventChannel, payload).Err()
}
