// Package fabric implements the six socket-role wrappers of the messaging
// fabric (Publisher, Subscriber, Pusher, Puller, Requester, Responder) over
// a shared NATS connection. NATS addresses channels by subject rather than
// by binding one TCP port per role, so the configured base port is used to
// derive five subject names instead of five listeners.
package fabric

import "fmt"

// Subjects is the subject layout derived from a single base port: every
// subject shares the same <base_port> segment and differs only by its
// role suffix, mirroring the five-channel port layout of the original
// design without reproducing its per-role port arithmetic.
type Subjects struct {
	Heartbeat    string // publisher -> subscriber, heartbeat broadcast
	Work         string // pusher -> puller, TestSpec dispatch
	Files        string // requester -> responder, file service
	Results      string // requester -> responder, result ingest
	HeartbeatAck string // requester -> responder, heartbeat response ingest
}

// DeriveSubjects computes the subject layout for a given base port.
func DeriveSubjects(basePort uint16) Subjects {
	const prefix = "grademesh"
	return Subjects{
		Heartbeat:    fmt.Sprintf("%s.%d.heartbeat", prefix, basePort),
		Work:         fmt.Sprintf("%s.%d.work", prefix, basePort),
		Files:        fmt.Sprintf("%s.%d.files", prefix, basePort),
		Results:      fmt.Sprintf("%s.%d.results", prefix, basePort),
		HeartbeatAck: fmt.Sprintf("%s.%d.heartbeat-ack", prefix, basePort),
	}
}

// WorkQueueGroup is the NATS queue group name pullers join so that a push is
// delivered to exactly one of them.
const WorkQueueGroup = "workers"
