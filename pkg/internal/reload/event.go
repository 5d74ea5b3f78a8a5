// Package reload watches files and reloads what was built from them.
package reload

import (
	"github.com/robinbraemer/event"
)

// UpdateEvent is fired when something built from watched files was rebuilt.
type UpdateEvent[T any] struct {
	// Previous is the replaced value.
	Previous T
	// Current is the new value.
	Current T
}

// Event implements event.Event.
var _ event.Event = (*UpdateEvent[any])(nil)

// Subscribe subscribes the given handler to update events of T.
func Subscribe[T any](mgr event.Manager, handler func(*UpdateEvent[T])) func() {
	return event.Subscribe(mgr, 0, handler)
}

// FireUpdate fires an update event of T.
func FireUpdate[T any](mgr event.Manager, previous, current T) {
	mgr.Fire(&UpdateEvent[T]{Previous: previous, Current: current})
}
