package registry_test

import (
	"testing"
	"time"

	"github.com/hackerjacks/gradecluster/internal/registry"
	"github.com/stretchr/testify/require"
)

func TestHappyPathMarksFinishedAndDone(t *testing.T) {
	r := registry.New([]string{"alice"})
	require.False(t, r.Done())

	key, ok := r.PopNext()
	require.True(t, ok)
	require.Equal(t, "alice", key)
	r.MarkAssigned(key)

	r.OnResult(key)
	require.True(t, r.Done())
}

func TestZeroAssignmentsIsImmediatelyDone(t *testing.T) {
	r := registry.New(nil)
	require.True(t, r.Done())
	_, ok := r.PopNext()
	require.False(t, ok)
}

func TestRetryCapExhaustsAfterThreeTimeouts(t *testing.T) {
	r := registry.New([]string{"alice"})

	for i := 0; i < registry.RetryCap; i++ {
		key, ok := r.PopNext()
		require.True(t, ok, "attempt %d", i+1)
		r.MarkAssigned(key)
		requeued := r.OnTimeout(key)
		if i < registry.RetryCap-1 {
			require.True(t, requeued)
		}
	}

	require.True(t, r.Done())
	_, ok := r.PopNext()
	require.False(t, ok, "exhausted key must not be dispatched a fourth time")

	snap := r.Snapshot()
	require.Equal(t, 1, snap.Exhausted)
	require.Equal(t, 0, snap.Finished)
}

func TestOnResultIsIdempotent(t *testing.T) {
	r := registry.New([]string{"alice"})
	key, _ := r.PopNext()
	r.MarkAssigned(key)

	r.OnResult(key)
	r.OnResult(key)
	require.True(t, r.Done())

	snap := r.Snapshot()
	require.Equal(t, 1, snap.Finished)
}

func TestOnTimeoutDoesNotUndoFinished(t *testing.T) {
	r := registry.New([]string{"alice"})
	key, _ := r.PopNext()
	r.MarkAssigned(key)
	r.OnResult(key)

	requeued := r.OnTimeout(key)
	require.False(t, requeued, "a late timeout racing a finished result must not re-queue")
	require.True(t, r.Done())
}

func TestDoneIsMonotone(t *testing.T) {
	r := registry.New([]string{"a", "b"})
	require.False(t, r.Done())

	k1, _ := r.PopNext()
	r.MarkAssigned(k1)
	r.OnResult(k1)
	require.False(t, r.Done())

	k2, _ := r.PopNext()
	r.MarkAssigned(k2)
	r.OnResult(k2)
	require.True(t, r.Done())

	// Nothing can make it false again.
	r.OnTimeout(k2)
	require.True(t, r.Done())
}

func TestWaitForDoneUnblocksOnCompletion(t *testing.T) {
	r := registry.New([]string{"alice"})

	doneCh := make(chan struct{})
	go func() {
		r.WaitForDone()
		close(doneCh)
	}()

	select {
	case <-doneCh:
		t.Fatal("WaitForDone returned before completion")
	case <-time.After(20 * time.Millisecond):
	}

	key, _ := r.PopNext()
	r.MarkAssigned(key)
	r.OnResult(key)

	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("WaitForDone did not unblock after completion")
	}
}

func TestAttemptsNeverExceedRetryCap(t *testing.T) {
	r := registry.New([]string{"alice"})
	dispatches := 0
	for i := 0; i < 10; i++ {
		key, ok := r.PopNext()
		if !ok {
			break
		}
		dispatches++
		r.MarkAssigned(key)
		r.OnTimeout(key)
	}
	require.Equal(t, registry.RetryCap, dispatches)
	snap := r.Snapshot()
	require.LessOrEqual(t, snap.Exhausted, 1)
}
