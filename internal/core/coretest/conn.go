// Package coretest provides an in-memory core.Connection for tests.
package coretest

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/dkeye/Duet/internal/core"
)

var ErrSendFailed = errors.New("coretest: send failed")

// Conn records every frame it accepts.
type Conn struct {
	Name string

	mu     sync.Mutex
	frames []core.Frame
	fail   bool
	closed int
}

func NewConn(name string) *Conn { return &Conn{Name: name} }

func (c *Conn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return ErrSendFailed
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *Conn) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

// Fail makes subsequent sends return ErrSendFailed.
func (c *Conn) Fail() {
	c.mu.Lock()
	c.fail = true
	c.mu.Unlock()
}

func (c *Conn) Closed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Frames() []core.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]core.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

// Messages decodes every recorded frame as a JSON object.
func (c *Conn) Messages() []map[string]any {
	frames := c.Frames()
	out := make([]map[string]any, 0, len(frames))
	for _, f := range frames {
		var m map[string]any
		if err := json.Unmarshal(f, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Values returns the string values stored under key, in arrival order.
func (c *Conn) Values(key string) []string {
	var out []string
	for _, m := range c.Messages() {
		if s, ok := m[key].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (c *Conn) Reset() {
	c.mu.Lock()
	c.frames = nil
	c.mu.Unlock()
}
