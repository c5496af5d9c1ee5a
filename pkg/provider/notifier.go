package provider

import (
	"context"

	"github.com/google/uuid"
)

// Notifier delivers a short message to a user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, message string) error
}
