package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"subscription-service/internal/domain/ports/notify"
)

// Ensure interface compliance
var _ notify.ExpiryNotifier = (*ExpiryPublisher)(nil)

// ExpiryPublisher broadcasts expiry events on a Redis pub/sub channel.
// Subscribers receive one JSON message per expired subscription.
type ExpiryPublisher struct {
	cli     RedisClient
	channel string
}

func NewExpiryPublisher(cli RedisClient, channel string) *ExpiryPublisher {
	return &ExpiryPublisher{cli: cli, channel: channel}
}

func (p *ExpiryPublisher) SubscriptionExpired(ctx context.Context, ev notify.ExpiryEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal expiry event: %w", err)
	}
	if err := p.cli.Publish(ctx, p.channel, payload); err != nil {
		return fmt.Errorf("publish expiry event: %w", err)
	}
	return nil
}
