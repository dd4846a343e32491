package fabric

import (
	"fmt"
	"sync"
	"time"

	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/nats-io/nats.go"
)

// Requester sends one message and blocks until exactly one reply arrives,
// or the request times out.
type Requester struct {
	nc      *nats.Conn
	subject string
	channel envelope.Channel
	timeout time.Duration
}

func NewRequester(nc *nats.Conn, subject string, replyChannel envelope.Channel, timeout time.Duration) *Requester {
	return &Requester{nc: nc, subject: subject, channel: replyChannel, timeout: timeout}
}

func (r *Requester) Send(msg envelope.Message) (envelope.Message, error) {
	b, err := envelope.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("fabric: encode request: %w", err)
	}

	reply, err := r.nc.Request(r.subject, b, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("fabric: request: %w", err)
	}

	out, err := envelope.Decode(reply.Data, r.channel)
	if err != nil {
		return nil, fmt.Errorf("fabric: decode reply: %w", err)
	}
	return out, nil
}

func (r *Requester) Close() error { return nil }

// Responder serves one reply per incoming request. The handler computes
// the reply from the decoded request; Serve encodes and sends it exactly
// once. Serve blocks until Close is called.
type Responder struct {
	nc      *nats.Conn
	subject string
	channel envelope.Channel

	mu     sync.Mutex
	sub    *nats.Subscription
	done   chan struct{}
	closed bool
}

func NewResponder(nc *nats.Conn, subject string, channel envelope.Channel) *Responder {
	return &Responder{nc: nc, subject: subject, channel: channel, done: make(chan struct{})}
}

// Serve registers the handler and blocks. On a decode error (the incoming
// message did not match this channel's allowed variants, or was not valid
// JSON at all) it replies with an empty Files ack and does not invoke the
// handler, mirroring the "any other message variant: reply with an empty
// Files([]) and drop" rule shared by every responder role in this system.
func (r *Responder) Serve(handler func(envelope.Message) envelope.Message) error {
	sub, err := r.nc.Subscribe(r.subject, func(m *nats.Msg) {
		msg, err := envelope.Decode(m.Data, r.channel)
		var reply envelope.Message
		if err != nil {
			reply = envelope.Files{}
		} else {
			reply = handler(msg)
		}
		b, err := envelope.Encode(reply)
		if err != nil {
			b, _ = envelope.Encode(envelope.Files{})
		}
		_ = m.Respond(b)
	})
	if err != nil {
		return fmt.Errorf("fabric: subscribe responder: %w", err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = sub.Unsubscribe()
		return nil
	}
	r.sub = sub
	r.mu.Unlock()

	<-r.done
	return nil
}

func (r *Responder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.sub != nil {
		_ = r.sub.Unsubscribe()
	}
	close(r.done)
	return nil
}
