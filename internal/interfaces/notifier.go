package interfaces

import "context"

// Notifier publishes diagnostic notifications (rejected events, frozen
// accounts) to an external channel. Implementations must not write to the
// primary output stream.
type Notifier interface {
	Publish(ctx context.Context, event any) error
}
