package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnceSetFirstCallWins(t *testing.T) {
	o := NewOnce[int]()
	o.Set(1)
	o.Set(2)
	assert.Equal(t, 1, o.Get())
}

func TestOnceTryGetBeforeSet(t *testing.T) {
	o := NewOnce[string]()
	v, ok := o.TryGet()
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestOnceGetBlocksUntilSet(t *testing.T) {
	o := NewOnce[int]()
	done := make(chan int, 1)
	go func() { done <- o.Get() }()

	time.Sleep(20 * time.Millisecond)
	o.Set(42)

	select {
	case v := <-done:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Set")
	}
}

func TestOnceMustSetReportsLoser(t *testing.T) {
	o := NewOnce[int]()
	require.NoError(t, o.MustSet(1))
	err := o.MustSet(2)
	assert.Error(t, err)
	assert.Equal(t, 1, o.Get())
}

func TestStripExt(t *testing.T) {
	assert.Equal(t, "alice", StripExt("alice.txt"))
	assert.Equal(t, "alice", StripExt("alice"))
	assert.Equal(t, ".hidden", StripExt(".hidden"))
}
