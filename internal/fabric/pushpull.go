package fabric

import (
	"fmt"
	"sync"

	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/nats-io/nats.go"
)

// Pusher is the 1->1 load-balanced producer: exactly one connected Puller
// receives each push.
type Pusher struct {
	nc      *nats.Conn
	subject string
}

func NewPusher(nc *nats.Conn, subject string) *Pusher {
	return &Pusher{nc: nc, subject: subject}
}

func (p *Pusher) Push(msg envelope.Message) error {
	b, err := envelope.Encode(msg)
	if err != nil {
		return fmt.Errorf("fabric: encode work item: %w", err)
	}
	if err := p.nc.Publish(p.subject, b); err != nil {
		return fmt.Errorf("fabric: push: %w", err)
	}
	return nil
}

func (p *Pusher) Close() error { return nil }

// Puller is the connect side of a Pusher. Every Puller on the same subject
// joins the same NATS queue group, so NATS load-balances deliveries among
// them instead of fanning them out.
type Puller struct {
	nc      *nats.Conn
	subject string
	channel envelope.Channel

	mu     sync.Mutex
	sub    *nats.Subscription
	done   chan struct{}
	closed bool
}

func NewPuller(nc *nats.Conn, subject string, channel envelope.Channel) *Puller {
	return &Puller{nc: nc, subject: subject, channel: channel, done: make(chan struct{})}
}

func (p *Puller) Connect(handler func(envelope.Message)) error {
	sub, err := p.nc.QueueSubscribe(p.subject, WorkQueueGroup, func(m *nats.Msg) {
		msg, err := envelope.Decode(m.Data, p.channel)
		if err != nil {
			return
		}
		handler(msg)
	})
	if err != nil {
		return fmt.Errorf("fabric: queue subscribe: %w", err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	p.sub = sub
	p.mu.Unlock()

	<-p.done
	return nil
}

func (p *Puller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.sub != nil {
		_ = p.sub.Unsubscribe()
	}
	close(p.done)
	return nil
}
