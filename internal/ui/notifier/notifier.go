// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import (
	"slices"
	"sync"
)

// Notifier broadcasts update pings to subscribed listeners. Listeners
// subscribe to topics (resource names); a listener with no topics hears
// every broadcast, and a broadcast with no topics reaches every listener.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}][]string
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}][]string),
	}
}

// Subscribe returns a channel that receives pings when one of topics
// changes. The caller must call Unsubscribe when done.
func (n *Notifier) Subscribe(topics ...string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = slices.Clone(topics)
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Broadcast pings every listener interested in one of topics.
// Non-blocking: a listener with a ping already pending is skipped.
func (n *Notifier) Broadcast(topics ...string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, want := range n.listeners {
		if !interested(want, topics) {
			continue
		}
		select {
		case ch <- struct{}{}:
		default:
			// Already pending; the listener re-reads everything anyway.
		}
	}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

func interested(want, topics []string) bool {
	if len(want) == 0 || len(topics) == 0 {
		return true
	}
	for _, t := range topics {
		if slices.Contains(want, t) {
			return true
		}
	}
	return false
}
