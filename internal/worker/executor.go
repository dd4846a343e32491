package worker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/hackerjacks/gradecluster/internal/collaborators"
)

// timeoutKillSignal is sent to the whole process group of a command that
// overran its wall-clock budget.
const timeoutKillSignal = syscall.SIGKILL

// executionOutcome distinguishes a command sequence that ran to completion
// (whether or not every command exited zero) from one that was killed for
// exceeding its wall-clock budget.
type executionOutcome int

const (
	outcomeCompleted executionOutcome = iota
	outcomeTimedOut
)

// executeCommands runs commands in order inside dir, sharing one wall-clock
// timeout across the whole sequence. Each command's combined stdout and
// stderr is appended to the transcript followed by an "END <command>\n"
// separator line, preceded by a newline only when the output does not
// already end with one (so "echo hello" yields "hello\nEND echo hello\n").
// When the timeout expires the running command's whole process group is
// killed. Execution stops at the first non-zero exit or at the timeout,
// whichever comes first; commands after that point are not run and
// contribute nothing to the transcript.
func executeCommands(dir string, commands []string, timeout time.Duration) ([]byte, executionOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var transcript bytes.Buffer

	for _, command := range commands {
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Dir = dir
		collaborators.SetProcessGroup(cmd)
		cmd.Cancel = func() error {
			return collaborators.KillProcessGroup(cmd, timeoutKillSignal)
		}
		cmd.Stdout = &transcript
		cmd.Stderr = &transcript

		err := cmd.Run()
		if b := transcript.Bytes(); len(b) == 0 || b[len(b)-1] != '\n' {
			transcript.WriteByte('\n')
		}
		fmt.Fprintf(&transcript, "END %s\n", command)

		if ctx.Err() == context.DeadlineExceeded {
			_ = collaborators.KillProcessGroup(cmd, timeoutKillSignal)
			printOutcome(command, outcomeTimedOut)
			return transcript.Bytes(), outcomeTimedOut
		}

		printOutcome(command, outcomeCompleted)
		if err != nil {
			return transcript.Bytes(), outcomeCompleted
		}
	}

	return transcript.Bytes(), outcomeCompleted
}

func printOutcome(command string, outcome executionOutcome) {
	switch outcome {
	case outcomeTimedOut:
		color.New(color.FgRed, color.Bold).Printf("TIMEOUT  %s\n", command)
	default:
		color.New(color.FgGreen).Printf("done     %s\n", command)
	}
}
