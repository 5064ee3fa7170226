// Package events publishes domain events after successful writes.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kasuganosora/friendsvc/broker"
	"go.uber.org/zap"
)

// Channel is the broker channel all domain events go through.
const Channel = "friendsvc.events"

// Event types carried in Event.Type.
const (
	UserCreated       = "user.created"
	UserUpdated       = "user.updated"
	UserDeleted       = "user.deleted"
	ItemCreated       = "item.created"
	FriendshipCreated = "friendship.created"
	DBPopulated       = "db.populated"
)

// Event is the JSON envelope written to the broker.
type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Publisher encodes and publishes events. A nil *Publisher drops everything.
type Publisher struct {
	ps     broker.PubSub
	logger *zap.Logger
}

// NewPublisher creates a Publisher on top of ps.
func NewPublisher(ps broker.PubSub, logger *zap.Logger) *Publisher {
	return &Publisher{ps: ps, logger: logger}
}

// Publish sends an event of the given type. Failures are logged only; the
// write that triggered the event has already been committed.
func (p *Publisher) Publish(ctx context.Context, typ string, data interface{}) {
	if p == nil {
		return
	}
	ev := Event{Type: typ, At: time.Now().UTC()}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			p.logger.Warn("event encode failed", zap.String("type", typ), zap.Error(err))
			return
		}
		ev.Data = raw
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn("event encode failed", zap.String("type", typ), zap.Error(err))
		return
	}
	if err := p.ps.Publish(ctx, Channel, string(payload)); err != nil {
		p.logger.Warn("event publish failed", zap.String("type", typ), zap.Error(err))
	}
}

// Subscribe returns decoded events until cancel is called or ctx ends.
// Undecodable payloads are skipped.
func (p *Publisher) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	msgs, cancel, err := p.ps.Subscribe(ctx, Channel)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				p.logger.Debug("skipping malformed event", zap.Error(err))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
	}()
	return out, cancel, nil
}
