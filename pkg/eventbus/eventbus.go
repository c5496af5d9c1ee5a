// Package eventbus defines the contract settlement events are published on.
package eventbus

import (
	"context"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
)

// HandlerFunc processes one event.
type HandlerFunc func(ctx context.Context, event events.Event) error

// Bus publishes events to the handlers registered for their type.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, event events.Event) error
}
