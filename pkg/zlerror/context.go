package zlerror

import "sync"

// OperationContext is the shared diagnostic channel: the Compressor,
// Serializer and Deserializer each embed one (the node/graph managers
// carry none) and expose ErrorContextString so callers can
// recover the most recent formatted error message for a given error
// value. It is valid only until the owning object is discarded.
type OperationContext struct {
	mu      sync.Mutex
	lastMsg string
	lastErr error
}

// Record stores err as the most recently observed error for this
// context and returns err unchanged, so call sites can write
// `return ctx.Record(zlerror.New(...))`.
func (c *OperationContext) Record(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		c.lastMsg = err.Error()
	}
	return err
}

// ErrorContextString returns the most recently recorded message for
// err, or "" if err does not match the last recorded error (the state
// object holds no information about the given error value).
func (c *OperationContext) ErrorContextString(err error) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil || c.lastErr == nil {
		return ""
	}
	if err == c.lastErr || err.Error() == c.lastErr.Error() {
		return c.lastMsg
	}
	return ""
}
