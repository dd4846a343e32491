package worker

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"time"

	"github.com/hackerjacks/gradecluster/internal/envelope"
)

// failedResultB64 is sent back when a command sequence is killed for
// exceeding its wall-clock budget, in place of whatever partial transcript
// had accumulated.
var failedResultB64 = base64.StdEncoding.EncodeToString([]byte("Failed"))

// runPullLoop joins the work queue group and, for each TestSpec delivered
// to this worker, fetches its files, executes its commands, and reports
// the outcome. It ends when the worker is marked finished or ctx is
// cancelled.
func (w *Worker) runPullLoop(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = w.workPuller.Close()
	}()

	return w.workPuller.Connect(func(msg envelope.Message) {
		if w.isFinished() {
			return
		}

		spec, ok := msg.(envelope.TestSpec)
		if !ok {
			return
		}

		w.handleAssignment(spec)

		if w.isFinished() {
			_ = w.workPuller.Close()
		}
	})
}

func (w *Worker) handleAssignment(spec envelope.TestSpec) {
	reply, err := w.filesReq.Send(envelope.FileReq{Key: spec.Key})
	if err != nil {
		w.log.Error("file request failed", "key", spec.Key, "error", err)
		return
	}
	files, ok := reply.(envelope.Files)
	if !ok {
		w.log.Error("unexpected file reply shape", "key", spec.Key)
		return
	}

	dir := filepath.Join(w.cfg.TestDir, spec.Key)
	if err := w.crawler.WriteAll(dir, files.Entries); err != nil {
		w.log.Error("materialize files failed", "key", spec.Key, "error", err)
		return
	}

	timeout := time.Duration(spec.TimeoutSeconds) * time.Second
	transcript, outcome := executeCommands(dir, spec.Commands, timeout)

	var resultB64 string
	if outcome == outcomeTimedOut {
		resultB64 = failedResultB64
	} else {
		resultB64 = base64.StdEncoding.EncodeToString(transcript)
	}

	if _, err := w.resultReq.Send(envelope.TestCompletion{Key: spec.Key, ResultsB64: resultB64}); err != nil {
		w.log.Error("report result failed", "key", spec.Key, "error", err)
	}
}
