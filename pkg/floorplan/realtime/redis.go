package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/observability"
)

// Redis carries patches over Redis pub/sub. Each subscription holds its own
// PubSub connection.
type Redis struct {
	client *redis.Client
	opts   options
}

var (
	_ Transport = (*Redis)(nil)
	_ Publisher = (*Redis)(nil)
)

// NewRedis wraps an existing client. The client is closed by Close only when
// WithOwnedClient is given.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	return &Redis{client: client, opts: newOptions(opts)}
}

// Subscribe listens on the floor's channel. It returns once Redis has
// confirmed the subscription.
func (r *Redis) Subscribe(ctx context.Context, floorID string, h Handler) (Subscription, error) {
	if err := errors.ValidateFloorID(floorID); err != nil {
		return nil, err
	}
	name := ChannelName(r.opts.prefix, floorID)

	ps := r.client.Subscribe(ctx, name)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		observability.Transport().OnSubscribe(ctx, "redis", name, err)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "subscribe %s", name)
	}
	observability.Transport().OnSubscribe(ctx, "redis", name, nil)

	sub := &redisSubscription{name: name, ps: ps, done: make(chan struct{})}
	sub.handler = h
	go sub.run(context.WithoutCancel(ctx), ps.Channel(), r.opts)
	return sub, nil
}

// Publish sends p to the floor's channel.
func (r *Redis) Publish(ctx context.Context, floorID string, p Patch) error {
	data, err := p.Encode()
	if err != nil {
		return err
	}
	name := ChannelName(r.opts.prefix, floorID)
	err = r.client.Publish(ctx, name, data).Err()
	observability.Transport().OnPublish(ctx, "redis", name, err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "publish %s", name)
	}
	return nil
}

// Close closes the client when it is owned.
func (r *Redis) Close() error {
	if r.opts.owned {
		return r.client.Close()
	}
	return nil
}

type redisSubscription struct {
	subscription
	name      string
	ps        *redis.PubSub
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *redisSubscription) run(ctx context.Context, ch <-chan *redis.Message, o options) {
	defer close(s.done)
	for msg := range ch {
		observability.Transport().OnMessage(ctx, "redis", s.name, len(msg.Payload))
		if !s.deliver(s.handler, []byte(msg.Payload)) {
			return
		}
	}
	if !s.isClosed() {
		o.logger.Warn("redis channel closed", "channel", s.name)
	}
}

func (s *redisSubscription) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close blocks further deliveries, closes the PubSub and waits for the
// receive loop to exit.
func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.close()
		s.closeErr = s.ps.Close()
		<-s.done
		observability.Transport().OnUnsubscribe(context.Background(), "redis", s.name)
	})
	return s.closeErr
}
