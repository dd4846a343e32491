package fabric

import (
	"fmt"
	"sync"

	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/nats-io/nats.go"
)

// Publisher is the 1->N broadcast producer. It binds the subject in the
// sense that it is the sole writer other components expect to see traffic
// from.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

func NewPublisher(nc *nats.Conn, subject string) *Publisher {
	return &Publisher{nc: nc, subject: subject}
}

// Send broadcasts msg to every currently-connected subscriber. Subscribers
// that connect afterwards will not see it.
func (p *Publisher) Send(msg envelope.Message) error {
	b, err := envelope.Encode(msg)
	if err != nil {
		return fmt.Errorf("fabric: encode heartbeat: %w", err)
	}
	if err := p.nc.Publish(p.subject, b); err != nil {
		return fmt.Errorf("fabric: publish: %w", err)
	}
	return nil
}

// Close is a no-op: the underlying connection is owned by the caller, not
// by the Publisher.
func (p *Publisher) Close() error { return nil }

// Subscriber is the connect side of a Publisher. Connect runs the given
// handler for every message delivered after the subscription is
// established and blocks until Close is called.
type Subscriber struct {
	nc      *nats.Conn
	subject string
	channel envelope.Channel

	mu     sync.Mutex
	sub    *nats.Subscription
	done   chan struct{}
	closed bool
}

func NewSubscriber(nc *nats.Conn, subject string, channel envelope.Channel) *Subscriber {
	return &Subscriber{nc: nc, subject: subject, channel: channel, done: make(chan struct{})}
}

// Connect subscribes and blocks the calling goroutine until Close unwinds
// it. It is meant to be run on a dedicated goroutine.
func (s *Subscriber) Connect(handler func(envelope.Message)) error {
	sub, err := s.nc.Subscribe(s.subject, func(m *nats.Msg) {
		msg, err := envelope.Decode(m.Data, s.channel)
		if err != nil {
			return
		}
		handler(msg)
	})
	if err != nil {
		return fmt.Errorf("fabric: subscribe: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()

	<-s.done
	return nil
}

// Close unblocks Connect and tears down the subscription. Idempotent.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.sub != nil {
		_ = s.sub.Unsubscribe()
	}
	close(s.done)
	return nil
}
