package wallet

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier propagates balance changes to subscribers. Publishing is
// best-effort: a dropped event only delays a UI refresh.
type Notifier interface {
	Publish(ctx context.Context, event BalanceEvent) error
	Subscribe(ctx context.Context, userID string) (<-chan BalanceEvent, func(), error)
}

const balanceChannelPrefix = "wallet:balance:"

type redisNotifier struct {
	rdb *redis.Client
}

func NewRedisNotifier(rdb *redis.Client) Notifier {
	return &redisNotifier{rdb: rdb}
}

func (n *redisNotifier) Publish(ctx context.Context, event BalanceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, balanceChannelPrefix+event.UserID, payload).Err()
}

func (n *redisNotifier) Subscribe(ctx context.Context, userID string) (<-chan BalanceEvent, func(), error) {
	sub := n.rdb.Subscribe(ctx, balanceChannelPrefix+userID)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	events := make(chan BalanceEvent, 16)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var event BalanceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				zap.L().Warn("dropping malformed balance event", zap.Error(err))
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return events, cancel, nil
}
