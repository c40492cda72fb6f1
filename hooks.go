package kvcache

// Hooks are callbacks for high-signal cache events. They run on the caller's
// goroutine after the pooled connection is released, so implementations
// must be cheap and non-blocking. See hooks/async for fan-out.
type Hooks interface {
	// Hit and Miss fire for every read, from Get and from Wrap.
	Hit(key string)
	Miss(key string)

	// A write was dropped because its TTL is not writable.
	WriteSkipped(key string, ttl TTL)

	// Wrap computed a value but could not store it.
	WriteBackFailed(key string, err error)

	// A stored value failed to decode and was deleted.
	DecodeFailed(key string, err error)

	// A pooled connection was dropped after a transport fault.
	ConnDiscarded(err error)
}

type NopHooks struct{}

func (NopHooks) Hit(string)                    {}
func (NopHooks) Miss(string)                   {}
func (NopHooks) WriteSkipped(string, TTL)      {}
func (NopHooks) WriteBackFailed(string, error) {}
func (NopHooks) DecodeFailed(string, error)    {}
func (NopHooks) ConnDiscarded(error)           {}
