package settlement

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Notifier pings the settlement worker over redis pub/sub. A nil client
// disables wake-ups; the worker then runs on its interval alone.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Wake asks the worker to run a batch now. Publish failures are logged,
// not returned; a missed wake only delays settlement to the next tick.
func (n *Notifier) Wake(ctx context.Context) {
	if n == nil || n.rdb == nil {
		return
	}
	if err := n.rdb.Publish(ctx, WakeChannel, "wake").Err(); err != nil {
		log.Error().Err(err).Str("channel", WakeChannel).Msg("Settlement wake publish failed")
	}
}
