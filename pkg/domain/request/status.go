// Package request holds the two-phase money requests staff review: wallet
// top-ups and bank withdrawals, plus the audit record of internal transfers.
package request

import (
	"fmt"
	"slices"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/common"
)

// Status of a request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

// Decision is what an admin chose for a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionDecline Decision = "decline"
)

// Machine enumerates the legal transitions for one request type.
type Machine struct {
	name      string
	outcomes  map[Decision]Status
	allowedTo map[Status][]Status
}

// TopupMachine: pending → approved | rejected.
var TopupMachine = Machine{
	name: "topup",
	outcomes: map[Decision]Status{
		DecisionApprove: StatusApproved,
		DecisionReject:  StatusRejected,
	},
	allowedTo: map[Status][]Status{
		StatusPending: {StatusApproved, StatusRejected},
	},
}

// WithdrawalMachine: pending → approved | declined.
var WithdrawalMachine = Machine{
	name: "withdrawal",
	outcomes: map[Decision]Status{
		DecisionApprove: StatusApproved,
		DecisionDecline: StatusDeclined,
	},
	allowedTo: map[Status][]Status{
		StatusPending: {StatusApproved, StatusDeclined},
	},
}

// Target maps a decision to the status it leads to.
func (m Machine) Target(d Decision) (Status, error) {
	to, ok := m.outcomes[d]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a %s decision", common.ErrValidation, d, m.name)
	}
	return to, nil
}

// Transition checks that from → to is legal.
func (m Machine) Transition(from, to Status) error {
	if !slices.Contains(m.allowedTo[from], to) {
		return fmt.Errorf("%w: %s request cannot move from %s to %s", common.ErrInvalidTransition, m.name, from, to)
	}
	return nil
}

// IsTerminal reports whether no transition leaves s.
func (m Machine) IsTerminal(s Status) bool {
	return len(m.allowedTo[s]) == 0
}
