package ports

import "atlas/internal/app"

// Notifier delivers engine events to the chat layer for one context. The
// session runtime calls Notify from its own goroutine; implementations that
// cannot send immediately (e.g. the Nakama match loop) should queue.
type Notifier interface {
	// Notify delivers one engine event for the given chat context.
	Notify(contextID string, ev app.Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(contextID string, ev app.Event)

// Notify implements Notifier.
func (f NotifierFunc) Notify(contextID string, ev app.Event) {
	f(contextID, ev)
}
