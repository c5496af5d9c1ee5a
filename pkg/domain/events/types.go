package events

// EventTypes maps a type name to a constructor, used by transports that
// decode events off the wire.
var EventTypes = map[string]func() Event{
	EventTypeGoldPurchased.String():       func() Event { return &Settled{} },
	EventTypeGoldSold.String():            func() Event { return &Settled{} },
	EventTypeInvestmentOpened.String():    func() Event { return &Settled{} },
	EventTypeInvestmentPaidOut.String():   func() Event { return &Settled{} },
	EventTypeTopupSubmitted.String():      func() Event { return &Settled{} },
	EventTypeTopupDecided.String():        func() Event { return &Settled{} },
	EventTypeWithdrawalRequested.String(): func() Event { return &Settled{} },
	EventTypeWithdrawalDecided.String():   func() Event { return &Settled{} },
	EventTypeFundsTransferred.String():    func() Event { return &Settled{} },
	EventTypeUserNotified.String():        func() Event { return &UserNotified{} },
}
