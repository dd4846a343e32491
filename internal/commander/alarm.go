package commander

import "time"

// runAlarm sleeps for the configured client timeout and then asks the
// registry to re-queue key if it has not finished in the meantime. The
// failure callback fires only when the registry actually re-queued the
// key: a key that finished just before the alarm fired is a success, not
// a failure, even though its alarm still runs to completion.
func (c *Commander) runAlarm(key string) {
	time.Sleep(c.clientTimeout)
	if c.registry.OnTimeout(key) {
		c.callbacks.OnFailure(key)
	}
}
