package senders

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// Console prints messages to a writer. It is the harness channel for local
// runs and never fails on its own.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole writes to w, or to stdout when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w}
}

func (c *Console) Channel() notifications.Channel { return notifications.ChannelConsole }

func (c *Console) Send(_ context.Context, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := fmt.Fprintf(c.w, "[%s] to=%s subject=%q\n%s\n", msg.EventType, msg.Recipient, msg.Subject, msg.Body)
	if err != nil {
		return sendFailed(notifications.ChannelConsole, err)
	}
	return nil
}
