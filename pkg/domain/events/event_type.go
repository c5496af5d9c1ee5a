package events

// EventType represents the type of an event in the system.
type EventType string

// Event type constants
const (
	// Gold events
	EventTypeGoldPurchased EventType = "Gold.Purchased"
	EventTypeGoldSold      EventType = "Gold.Sold"

	// Investment events
	EventTypeInvestmentOpened  EventType = "Investment.Opened"
	EventTypeInvestmentPaidOut EventType = "Investment.PaidOut"

	// Top-up events
	EventTypeTopupSubmitted EventType = "Topup.Submitted"
	EventTypeTopupDecided   EventType = "Topup.Decided"

	// Withdrawal events
	EventTypeWithdrawalRequested EventType = "Withdrawal.Requested"
	EventTypeWithdrawalDecided   EventType = "Withdrawal.Decided"
	EventTypeFundsTransferred    EventType = "Withdrawal.Transferred"

	// Notification events
	EventTypeUserNotified EventType = "User.Notified"
)

func (t EventType) String() string {
	return string(t)
}
