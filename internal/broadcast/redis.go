package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// RedisBridge relays draw traffic between server instances over Redis
// pub/sub, so players of one room connected to different instances see the
// same canvas. Local delivery still goes through the wrapped hub.
type RedisBridge struct {
	hub    *Hub
	rdb    *redis.Client
	prefix string
	origin string
	log    *logrus.Entry
}

var _ game.Broadcaster = (*RedisBridge)(nil)

type wireMessage struct {
	Origin  string          `json:"origin"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// NewRedisBridge starts the relay goroutine; it stops when ctx is canceled.
func NewRedisBridge(ctx context.Context, rdb *redis.Client, hub *Hub, prefix string, log *logrus.Entry) *RedisBridge {
	if prefix == "" {
		prefix = "sketch:room:"
	}
	b := &RedisBridge{
		hub:    hub,
		rdb:    rdb,
		prefix: prefix,
		origin: uuid.NewString(),
		log:    log.WithField("component", "redis-bridge"),
	}
	go b.relay(ctx)
	return b
}

func (b *RedisBridge) channel(roomID string) string {
	return b.prefix + roomID
}

func (b *RedisBridge) Publish(roomID, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", event, err)
	}
	b.hub.dispatch(roomID, event, data)

	msg, err := json.Marshal(wireMessage{Origin: b.origin, Event: event, Payload: data})
	if err != nil {
		return fmt.Errorf("marshal wire message: %w", err)
	}
	if err := b.rdb.Publish(context.Background(), b.channel(roomID), msg).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBridge) Subscribe(roomID string, handler func(event string, payload []byte)) func() {
	return b.hub.Subscribe(roomID, handler)
}

func (b *RedisBridge) relay(ctx context.Context) {
	sub := b.rdb.PSubscribe(ctx, b.prefix+"*")
	defer sub.Close()
	b.log.Info("relay started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			var wm wireMessage
			if err := json.Unmarshal([]byte(msg.Payload), &wm); err != nil {
				b.log.WithError(err).Warn("dropping malformed relay message")
				continue
			}
			if wm.Origin == b.origin {
				continue
			}
			roomID := strings.TrimPrefix(msg.Channel, b.prefix)
			b.hub.dispatch(roomID, wm.Event, wm.Payload)
		}
	}
}
