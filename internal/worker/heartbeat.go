package worker

import (
	"context"

	"github.com/hackerjacks/gradecluster/internal/envelope"
)

// runHeartbeatHandler subscribes to the commander's heartbeat broadcast.
// Every heartbeat it sees, it reports its own discovered IP back over the
// heartbeat-ack channel and ignores the reply (an empty Files ack by
// convention). Once a heartbeat carries done=true it marks itself finished
// and unsubscribes, ending the loop.
func (w *Worker) runHeartbeatHandler(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = w.heartbeatSub.Close()
	}()

	return w.heartbeatSub.Connect(func(msg envelope.Message) {
		hb, ok := msg.(envelope.Heartbeat)
		if !ok {
			return
		}

		ip, err := w.discoverer.DiscoverIP()
		if err != nil {
			w.log.Warn("discover ip failed", "error", err)
		} else if _, err := w.ackReq.Send(envelope.HeartbeatResp{IP: ip}); err != nil {
			w.log.Warn("heartbeat ack failed", "error", err)
		}

		if hb.Done {
			w.heartbeatDone.Set(struct{}{})
			_ = w.heartbeatSub.Close()
		}
	})
}
