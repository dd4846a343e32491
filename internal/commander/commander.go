// Package commander implements the dispatch-and-completion engine: the
// five service loops that together publish heartbeats, push work, serve
// files, ingest results, and re-queue timed-out assignments.
package commander

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/hackerjacks/gradecluster/internal/collaborators"
	"github.com/hackerjacks/gradecluster/internal/config"
	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/hackerjacks/gradecluster/internal/fabric"
	"github.com/hackerjacks/gradecluster/internal/liveness"
	"github.com/hackerjacks/gradecluster/internal/registry"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"
)

// Commander is the command-and-control server: it dispatches assignments
// to workers, tracks their liveness, and persists results.
type Commander struct {
	cfg *config.Commander
	log *slog.Logger

	nc       *nats.Conn
	subjects fabric.Subjects

	heartbeatPub    *fabric.Publisher
	workPusher      *fabric.Pusher
	fileResponder   *fabric.Responder
	resultResponder *fabric.Responder
	ackResponder    *fabric.Responder

	liveness *liveness.Tracker
	registry *registry.Registry
	crawler  collaborators.FileCrawler
	commands []string

	callbacks Callbacks

	clientTimeout time.Duration
	testTimeout   uint32

	shuttingDown atomic.Bool
}

// New wires a Commander from configuration: it opens the NATS connection,
// derives the subject layout, seeds the assignment registry from test_dir's
// immediate subdirectories, and loads the command file.
func New(cfg *config.Commander, log *slog.Logger, callbacks Callbacks) (*Commander, error) {
	callbacks.fillDefaults()

	nc, err := nats.Connect(cfg.NATSUrl, nats.Name("gradecluster-commander"))
	if err != nil {
		return nil, fmt.Errorf("commander: connect to nats: %w", err)
	}

	crawler := collaborators.NewDirFileCrawler()
	keys, err := crawler.Subdirs(cfg.TestDir)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("commander: scan test dir: %w", err)
	}

	commands, err := collaborators.ReadCommandFile(cfg.CommandFile)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("commander: load command file: %w", err)
	}

	subjects := fabric.DeriveSubjects(cfg.BasePort)

	c := &Commander{
		cfg:             cfg,
		log:             log,
		nc:              nc,
		subjects:        subjects,
		heartbeatPub:    fabric.NewPublisher(nc, subjects.Heartbeat),
		workPusher:      fabric.NewPusher(nc, subjects.Work),
		fileResponder:   fabric.NewResponder(nc, subjects.Files, envelope.ChannelFiles),
		resultResponder: fabric.NewResponder(nc, subjects.Results, envelope.ChannelResults),
		ackResponder:    fabric.NewResponder(nc, subjects.HeartbeatAck, envelope.ChannelHeartbeatAck),
		liveness:        liveness.New(),
		registry:        registry.New(keys),
		crawler:         crawler,
		commands:        commands,
		callbacks:       callbacks,
		clientTimeout:   time.Duration(cfg.ClientTimeout) * time.Second,
		testTimeout:     cfg.TestTimeout,
	}

	log.Info("commander initialized",
		"total_assignments", c.registry.TotalAssignments(),
		"commands", len(commands),
		"base_port", cfg.BasePort,
	)
	return c, nil
}

// Run starts the five service loops and blocks until every assignment has
// reached a terminal state, then shuts the commander down. It returns the
// first surfaced error from any service loop, if any.
func (c *Commander) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.runHeartbeatPublisher(gctx) })
	g.Go(c.runHeartbeatResponder)
	g.Go(c.runFileResponder)
	g.Go(c.runResultResponder)
	g.Go(func() error { return c.runWorkPusher(gctx) })

	c.registry.WaitForDone()
	c.log.Info("all assignments reached a terminal state, shutting down")

	if err := c.Close(); err != nil {
		c.log.Error("commander: error during close", "error", err)
	}

	return g.Wait()
}

// Close delays by 2x the client timeout so a final done=true heartbeat has
// time to propagate, then flips the shutdown flag and releases every
// socket. Idempotent in the sense that a second call is harmless (NATS
// unsubscribe and conn.Close are themselves idempotent).
func (c *Commander) Close() error {
	time.Sleep(2 * c.clientTimeout)
	c.shuttingDown.Store(true)

	c.heartbeatPub.Close()
	c.workPusher.Close()
	c.fileResponder.Close()
	c.resultResponder.Close()
	c.ackResponder.Close()
	c.nc.Close()
	return nil
}

func (c *Commander) isShuttingDown() bool {
	return c.shuttingDown.Load()
}

func (c *Commander) resultsDir() string {
	if c.cfg.ResultsDir != "" {
		return c.cfg.ResultsDir
	}
	return "./results"
}

func (c *Commander) assignmentDir(key string) string {
	return filepath.Join(c.cfg.TestDir, key)
}
