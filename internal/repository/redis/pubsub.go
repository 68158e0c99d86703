package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirinyoku/cinebook/internal/domain"
)

// ShowtimeChange is broadcast after the ledger changed seat occupancy for a
// showtime.
type ShowtimeChange struct {
	Type       string `json:"type"`
	MovieID    int64  `json:"movie_id"`
	ShowtimeID int64  `json:"showtime_id"`
	TsUnix     int64  `json:"ts_unix"`
}

func (m ShowtimeChange) Key() domain.ShowtimeKey {
	return domain.ShowtimeKey{MovieID: m.MovieID, ShowtimeID: m.ShowtimeID}
}

type ShowtimesPubSub struct {
	rdb     redis.UniversalClient
	channel string
}

func NewShowtimesPubSub(rdb redis.UniversalClient) *ShowtimesPubSub {
	return &ShowtimesPubSub{
		rdb:     rdb,
		channel: ChannelShowtimesChanged(),
	}
}

func (p *ShowtimesPubSub) PublishShowtimeChanged(ctx context.Context, key domain.ShowtimeKey) error {
	msg := ShowtimeChange{
		Type:       "showtime_changed",
		MovieID:    key.MovieID,
		ShowtimeID: key.ShowtimeID,
		TsUnix:     time.Now().Unix(),
	}

	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

// Subscribe blocks, calling handler for every well-formed message, until ctx
// is done or the subscription channel closes.
func (p *ShowtimesPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, change ShowtimeChange)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	// subscription must be confirmed before messages are consumed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var change ShowtimeChange
			if err := json.Unmarshal([]byte(m.Payload), &change); err == nil &&
				change.Type != "" {
				handler(ctx, change)
			}
		}
	}
}
