package commander

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hackerjacks/gradecluster/internal/envelope"
)

const idlePollInterval = 50 * time.Millisecond

// runHeartbeatPublisher broadcasts a Heartbeat carrying the current wall
// time and the registry's done state, and sweeps stale liveness entries,
// once per client_timeout, for as long as the commander is not shutting
// down. Done is read from the registry rather than latched locally so a
// worker connecting late still sees the true current state.
func (c *Commander) runHeartbeatPublisher(ctx context.Context) error {
	ticker := time.NewTicker(c.clientTimeout)
	defer ticker.Stop()

	for !c.isShuttingDown() {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		hb := envelope.Heartbeat{Time: float64(time.Now().UnixNano()) / 1e9, Done: c.registry.Done()}
		if err := c.heartbeatPub.Send(hb); err != nil {
			c.log.Warn("heartbeat publish failed", "error", err)
		}

		c.liveness.Cleanup(c.clientTimeout, c.callbacks.OnClientTimeout)
	}
	return nil
}

// runHeartbeatResponder serves the heartbeat-ack channel: every worker that
// reports its IP there is recorded as alive, freshly-connected or not.
func (c *Commander) runHeartbeatResponder() error {
	return c.ackResponder.Serve(func(msg envelope.Message) envelope.Message {
		resp, ok := msg.(envelope.HeartbeatResp)
		if !ok {
			return envelope.Files{}
		}
		c.liveness.AddIP(resp.IP, c.callbacks.OnClientConnected)
		return envelope.Files{}
	})
}

// commonKey is the distinguished FileReq key that selects common_dir
// instead of an assignment's own directory under test_dir.
const commonKey = "common"

// runFileResponder serves the files channel: a FileReq for "common" returns
// common_dir's contents; any other key returns test_dir/<key>'s contents.
// The two are never merged — exactly one directory is read per request.
func (c *Commander) runFileResponder() error {
	return c.fileResponder.Serve(func(msg envelope.Message) envelope.Message {
		req, ok := msg.(envelope.FileReq)
		if !ok {
			return envelope.Files{}
		}

		var dir string
		if req.Key == commonKey {
			dir = c.cfg.CommonDir
		} else {
			dir = c.assignmentDir(req.Key)
		}

		entries, err := c.crawler.ReadAll(dir)
		if err != nil {
			c.log.Warn("read files failed", "key", req.Key, "dir", dir, "error", err)
			return envelope.Files{}
		}

		return envelope.Files{Entries: entries}
	})
}

// runResultResponder serves the results channel: a TestCompletion persists
// the transcript, marks the key finished, and fires OnSuccess.
func (c *Commander) runResultResponder() error {
	return c.resultResponder.Serve(func(msg envelope.Message) envelope.Message {
		tc, ok := msg.(envelope.TestCompletion)
		if !ok {
			return envelope.Files{}
		}

		if err := persistResult(c.resultsDir(), tc.Key, tc.ResultsB64); err != nil {
			c.log.Error("persist result failed", "key", tc.Key, "error", err)
			return envelope.Files{}
		}

		c.registry.OnResult(tc.Key)
		c.callbacks.OnSuccess(tc.Key)
		return envelope.Files{}
	})
}

// runWorkPusher pops assignments off the registry and pushes one TestSpec
// per pop, arming a timeout alarm for each. When the registry has no
// assignment immediately ready it polls rather than busy-spinning.
func (c *Commander) runWorkPusher(ctx context.Context) error {
	for !c.isShuttingDown() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		key, ok := c.registry.PopNext()
		if !ok {
			time.Sleep(idlePollInterval)
			continue
		}

		c.registry.MarkAssigned(key)
		dispatchID := uuid.NewString()
		spec := envelope.TestSpec{Key: key, TimeoutSeconds: c.testTimeout, Commands: c.commands}
		if err := c.workPusher.Push(spec); err != nil {
			c.log.Warn("push work failed", "key", key, "dispatch_id", dispatchID, "error", err)
		} else {
			c.log.Debug("dispatched assignment", "key", key, "dispatch_id", dispatchID)
		}

		go c.runAlarm(key)
	}
	return nil
}
