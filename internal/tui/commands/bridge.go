// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Bridge carries session callbacks, which run on background goroutines, into
// the Bubble Tea update loop. Sends never block: screens render from live
// session state, so a dropped intermediate update only delays a redraw.
type Bridge struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge creates a Bridge buffering up to size messages.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{ch: make(chan tea.Msg, size), done: make(chan struct{})}
}

// Send queues msg, dropping it if the buffer is full or the bridge is closed.
func (b *Bridge) Send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.ch <- msg:
	default:
	}
}

// Listen waits for the next queued message. Re-issue it after every message
// it delivers.
func (b *Bridge) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close releases any pending Listen.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}
