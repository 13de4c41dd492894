package sandbox

import "sync"

// boundedCapture io.Writer yang menyimpan maksimal max byte.
// Write selalu lapor sukses supaya child terus bisa flush outputnya;
// kelebihan byte dibuang dan ditandai truncated, tidak pernah drop diam-diam.
type boundedCapture struct {
	max int64

	mu        sync.Mutex
	buf       []byte
	truncated bool
}

func newBoundedCapture(max int64) *boundedCapture {
	if max < 0 {
		max = 0
	}
	return &boundedCapture{max: max}
}

func (c *boundedCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	remaining := c.max - int64(len(c.buf))
	if remaining <= 0 {
		if len(p) > 0 {
			c.truncated = true
		}
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		c.buf = append(c.buf, p[:remaining]...)
		c.truncated = true
		return len(p), nil
	}
	c.buf = append(c.buf, p...)
	return len(p), nil
}

func (c *boundedCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.buf)
}

func (c *boundedCapture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
