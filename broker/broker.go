// Package broker fans messages out to subscribers, either in-process or
// through Redis when several service instances share one event stream.
package broker

import (
	"context"

	"github.com/kasuganosora/friendsvc/broker/local"
	brokerredis "github.com/kasuganosora/friendsvc/broker/redis"
)

// Message is a received pub/sub message.
type Message struct {
	Channel string
	Payload string
}

// PubSub defines channel publish/subscribe operations.
type PubSub interface {
	Publish(ctx context.Context, channel, message string) error
	Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error)
	Close() error
}

// Config holds configuration for both Redis and the local fan-out.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LocalBuf      int
}

// New returns a PubSub backed by Redis if RedisAddr is set,
// otherwise an in-process fan-out.
func New(cfg Config) (PubSub, error) {
	if cfg.RedisAddr != "" {
		rps, err := brokerredis.New(brokerredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return &redisAdapter{ps: rps}, nil
	}
	return &localAdapter{ps: local.New(cfg.LocalBuf)}, nil
}

// ---- adapters to bridge sub-package message types to broker.Message ----

type localAdapter struct {
	ps *local.PubSub
}

func (a *localAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *localAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ch, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(ch, func(m *local.Message) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}

func (a *localAdapter) Close() error { return nil }

type redisAdapter struct {
	ps *brokerredis.PubSub
}

func (a *redisAdapter) Publish(ctx context.Context, channel, message string) error {
	return a.ps.Publish(ctx, channel, message)
}

func (a *redisAdapter) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ch, cancel, err := a.ps.Subscribe(ctx, channels...)
	if err != nil {
		return nil, nil, err
	}
	return relay(ch, func(m *brokerredis.Message) *Message {
		return &Message{Channel: m.Channel, Payload: m.Payload}
	}), cancel, nil
}

func (a *redisAdapter) Close() error { return a.ps.Close() }

func relay[T any](in <-chan T, conv func(T) *Message) <-chan *Message {
	out := make(chan *Message, cap(in))
	go func() {
		defer close(out)
		for msg := range in {
			out <- conv(msg)
		}
	}()
	return out
}
