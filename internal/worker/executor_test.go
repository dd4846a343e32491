package worker

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCommandsRunsSequentiallyAndSeparates(t *testing.T) {
	dir := t.TempDir()

	transcript, outcome := executeCommands(dir, []string{"echo one", "echo two"}, 5*time.Second)
	require.Equal(t, outcomeCompleted, outcome)

	out := string(transcript)
	assert.Contains(t, out, "one\nEND echo one\n")
	assert.Contains(t, out, "two\nEND echo two\n")
	assert.True(t, strings.Index(out, "END echo one") < strings.Index(out, "two"))
}

func TestExecuteCommandsStopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()

	transcript, outcome := executeCommands(dir, []string{"exit 1", "echo should-not-run"}, 5*time.Second)
	require.Equal(t, outcomeCompleted, outcome)
	assert.NotContains(t, string(transcript), "should-not-run")
}

func TestExecuteCommandsTimesOutAndKillsProcessGroup(t *testing.T) {
	dir := t.TempDir()

	start := time.Now()
	_, outcome := executeCommands(dir, []string{"sleep 5"}, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.Equal(t, outcomeTimedOut, outcome)
	assert.Less(t, elapsed, 4*time.Second)
}

func TestExecuteCommandsRunsInGivenDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/marker.txt", []byte("hi"), 0o644))

	transcript, outcome := executeCommands(dir, []string{"cat marker.txt"}, 5*time.Second)
	require.Equal(t, outcomeCompleted, outcome)
	assert.Contains(t, string(transcript), "hi")
}
