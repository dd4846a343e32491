package envelope_test

import (
	"testing"

	"github.com/hackerjacks/gradecluster/internal/envelope"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, msg envelope.Message, ch envelope.Channel) envelope.Message {
	t.Helper()
	b, err := envelope.Encode(msg)
	require.NoError(t, err)
	got, err := envelope.Decode(b, ch)
	require.NoError(t, err)
	return got
}

func TestRoundTripHeartbeat(t *testing.T) {
	msg := envelope.Heartbeat{Time: 1700000000.5, Done: true}
	got := roundTrip(t, msg, envelope.ChannelHeartbeat)
	require.Equal(t, msg, got)
}

func TestRoundTripHeartbeatResp(t *testing.T) {
	msg := envelope.HeartbeatResp{IP: "203.0.113.7"}
	got := roundTrip(t, msg, envelope.ChannelHeartbeatAck)
	require.Equal(t, msg, got)
}

func TestRoundTripTestSpec(t *testing.T) {
	msg := envelope.TestSpec{Key: "alice", TimeoutSeconds: 60, Commands: []string{"echo hello"}}
	got := roundTrip(t, msg, envelope.ChannelWork)
	require.Equal(t, msg, got)
}

func TestRoundTripFileReq(t *testing.T) {
	msg := envelope.FileReq{Key: "common"}
	got := roundTrip(t, msg, envelope.ChannelFiles)
	require.Equal(t, msg, got)
}

func TestRoundTripFiles(t *testing.T) {
	msg := envelope.Files{Entries: []envelope.FileEntry{
		{Path: "a.txt", B64: "b2s="},
		{Path: "b.txt", B64: "eWVz"},
	}}
	got := roundTrip(t, msg, envelope.ChannelFiles).(envelope.Files)
	require.ElementsMatch(t, msg.Entries, got.Entries)
}

func TestRoundTripEmptyFiles(t *testing.T) {
	msg := envelope.Files{}
	b, err := envelope.Encode(msg)
	require.NoError(t, err)
	require.Equal(t, "[]", string(b))
	got, err := envelope.Decode(b, envelope.ChannelFiles)
	require.NoError(t, err)
	require.Empty(t, got.(envelope.Files).Entries)
}

func TestRoundTripTestCompletion(t *testing.T) {
	msg := envelope.TestCompletion{Key: "alice", ResultsB64: "aGVsbG8="}
	got := roundTrip(t, msg, envelope.ChannelResults)
	require.Equal(t, msg, got)
}

func TestDecodeRejectsWrongChannel(t *testing.T) {
	b, err := envelope.Encode(envelope.Files{})
	require.NoError(t, err)

	_, err = envelope.Decode(b, envelope.ChannelWork)
	require.Error(t, err)
	var ctxErr *envelope.ErrInvalidContext
	require.ErrorAs(t, err, &ctxErr)
	require.Equal(t, envelope.ChannelWork, ctxErr.Channel)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := envelope.Decode([]byte("not json"), envelope.ChannelHeartbeat)
	require.Error(t, err)
}
