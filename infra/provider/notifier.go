package provider

import (
	"context"
	"time"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/provider"
	"github.com/google/uuid"
)

// BusNotifier hands user messages to the event bus as events.UserNotified;
// whatever consumes that type does the actual delivery.
type BusNotifier struct {
	bus eventbus.Bus
	now func() time.Time
}

// NewBusNotifier creates a new BusNotifier.
func NewBusNotifier(bus eventbus.Bus) *BusNotifier {
	return &BusNotifier{bus: bus, now: func() time.Time { return time.Now().UTC() }}
}

func (n *BusNotifier) Notify(ctx context.Context, userID uuid.UUID, message string) error {
	return n.bus.Emit(ctx, events.UserNotified{
		EventID:    uuid.New(),
		UserID:     userID,
		Message:    message,
		OccurredAt: n.now(),
	})
}

var _ provider.Notifier = (*BusNotifier)(nil)
