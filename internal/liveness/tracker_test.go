package liveness_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/hackerjacks/gradecluster/internal/liveness"
	"github.com/stretchr/testify/require"
)

func TestAddIPFiresOnNewOnce(t *testing.T) {
	tr := liveness.New()
	var newCount int32

	tr.AddIP("10.0.0.1", func(ip string) { atomic.AddInt32(&newCount, 1) })
	tr.AddIP("10.0.0.1", func(ip string) { atomic.AddInt32(&newCount, 1) })

	require.Equal(t, int32(1), atomic.LoadInt32(&newCount))
	require.ElementsMatch(t, []string{"10.0.0.1"}, tr.ConnectedIPs())
}

func TestCleanupEvictsStaleEntriesOnce(t *testing.T) {
	tr := liveness.New()
	tr.AddIP("10.0.0.1", nil)

	time.Sleep(20 * time.Millisecond)

	var evictions []string
	tr.Cleanup(5*time.Millisecond, func(ip string) { evictions = append(evictions, ip) })
	require.Equal(t, []string{"10.0.0.1"}, evictions)
	require.Empty(t, tr.ConnectedIPs())

	// Repeated cleanup with no intervening AddIP evicts nothing further.
	evictions = nil
	tr.Cleanup(5*time.Millisecond, func(ip string) { evictions = append(evictions, ip) })
	require.Empty(t, evictions)
}

func TestCleanupKeepsFreshEntries(t *testing.T) {
	tr := liveness.New()
	tr.AddIP("10.0.0.2", nil)

	tr.Cleanup(time.Minute, func(ip string) { t.Fatalf("unexpected eviction of %s", ip) })
	require.ElementsMatch(t, []string{"10.0.0.2"}, tr.ConnectedIPs())
}
