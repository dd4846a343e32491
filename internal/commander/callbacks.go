package commander

// Callbacks are the user's observation channel during a run. Every field
// defaults to a no-op.
type Callbacks struct {
	OnSuccess         func(key string)
	OnFailure         func(key string)
	OnClientConnected func(ip string)
	OnClientTimeout   func(ip string)
}

func defaultCallbacks() Callbacks {
	noop1 := func(string) {}
	return Callbacks{
		OnSuccess:         noop1,
		OnFailure:         noop1,
		OnClientConnected: noop1,
		OnClientTimeout:   noop1,
	}
}

func (c *Callbacks) fillDefaults() {
	d := defaultCallbacks()
	if c.OnSuccess == nil {
		c.OnSuccess = d.OnSuccess
	}
	if c.OnFailure == nil {
		c.OnFailure = d.OnFailure
	}
	if c.OnClientConnected == nil {
		c.OnClientConnected = d.OnClientConnected
	}
	if c.OnClientTimeout == nil {
		c.OnClientTimeout = d.OnClientTimeout
	}
}
