// Package worker implements the client side of the messaging fabric: the
// process that heartbeats its presence, pulls assignments, fetches their
// files, executes their commands under a wall-clock timeout, and reports
// the transcript back.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hackerjacks/gradecluster/internal/collaborators"
	"github.com/hackerjacks/gradecluster/internal/config"
	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/hackerjacks/gradecluster/internal/fabric"
	"github.com/hackerjacks/gradecluster/internal/util"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"
)

const requestTimeout = 30 * time.Second

// Worker is the grading client: one process per machine that executes
// assignments on behalf of the commander it is configured to follow.
type Worker struct {
	cfg *config.Worker
	log *slog.Logger

	nc       *nats.Conn
	subjects fabric.Subjects

	heartbeatSub *fabric.Subscriber
	workPuller   *fabric.Puller
	filesReq     *fabric.Requester
	ackReq       *fabric.Requester
	resultReq    *fabric.Requester

	discoverer collaborators.IPDiscoverer
	crawler    collaborators.FileCrawler

	// heartbeatDone is the join handle the heartbeat thread signals exactly
	// once, the moment it observes a heartbeat with done=true.
	heartbeatDone *util.Once[struct{}]
}

// New wires a Worker from configuration: it opens the NATS connection and
// derives the same subject layout the commander computed from its own
// base port (here, the worker's configured remote_port).
func New(cfg *config.Worker, log *slog.Logger) (*Worker, error) {
	nc, err := nats.Connect(cfg.NATSUrl, nats.Name("gradecluster-worker"))
	if err != nil {
		return nil, fmt.Errorf("worker: connect to nats: %w", err)
	}

	subjects := fabric.DeriveSubjects(cfg.RemotePort)

	w := &Worker{
		cfg:           cfg,
		log:           log,
		nc:            nc,
		subjects:      subjects,
		heartbeatSub:  fabric.NewSubscriber(nc, subjects.Heartbeat, envelope.ChannelHeartbeat),
		workPuller:    fabric.NewPuller(nc, subjects.Work, envelope.ChannelWork),
		filesReq:      fabric.NewRequester(nc, subjects.Files, envelope.ChannelFiles, requestTimeout),
		ackReq:        fabric.NewRequester(nc, subjects.HeartbeatAck, envelope.ChannelHeartbeatAck, requestTimeout),
		resultReq:     fabric.NewRequester(nc, subjects.Results, envelope.ChannelResults, requestTimeout),
		discoverer:    collaborators.NewHTTPIPDiscoverer(""),
		crawler:       collaborators.NewDirFileCrawler(),
		heartbeatDone: util.NewOnce[struct{}](),
	}

	log.Info("worker configured",
		"remote_ip", cfg.RemoteIP,
		"remote_port", cfg.RemotePort,
		"nats_url", cfg.NATSUrl,
	)
	return w, nil
}

// Run fans out the heartbeat handler and the assignment pull loop as an
// errgroup, same as the commander's five service loops, plus a third
// member that blocks on the heartbeat-thread join handle and closes the
// puller once it fires — unblocking runPullLoop's Connect so Run can
// return once either the commander announces done=true or ctx is
// cancelled.
func (w *Worker) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.runHeartbeatHandler(gctx) })
	g.Go(func() error { return w.runPullLoop(gctx) })
	g.Go(func() error {
		w.heartbeatDone.Get()
		_ = w.workPuller.Close()
		return nil
	})

	go func() {
		<-gctx.Done()
		w.heartbeatDone.Set(struct{}{})
	}()

	err := g.Wait()
	_ = w.Close()
	return err
}

// Close tears down every socket and the shared NATS connection. Idempotent.
func (w *Worker) Close() error {
	w.heartbeatSub.Close()
	w.workPuller.Close()
	w.nc.Close()
	return nil
}

func (w *Worker) isFinished() bool {
	_, done := w.heartbeatDone.TryGet()
	return done
}
