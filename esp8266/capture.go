package esp8266

import "sync"

// captureBuffer accumulates bytes from the module. Appends land in front;
// swap hands front to the reader and installs the spare slice, so a byte
// arriving during a read is kept for the next one instead of being lost.
type captureBuffer struct {
	mu    sync.Mutex
	front []byte
	back  []byte
}

func (c *captureBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	c.front = append(c.front, p...)
	c.mu.Unlock()
	return len(p), nil
}

// swap returns everything captured so far and empties the buffer. The
// returned slice is only valid until the next swap.
func (c *captureBuffer) swap() []byte {
	c.mu.Lock()
	out := c.front
	c.front = c.back[:0]
	c.back = out
	c.mu.Unlock()
	return out
}

func (c *captureBuffer) reset() {
	c.mu.Lock()
	c.front = c.front[:0]
	c.mu.Unlock()
}

func (c *captureBuffer) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.front)
}
