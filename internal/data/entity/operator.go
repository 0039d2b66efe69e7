package entity

type OperatorStatus string

const (
	OperatorStatusApproved  OperatorStatus = "approved"
	OperatorStatusPending   OperatorStatus = "pending"
	OperatorStatusSuspended OperatorStatus = "suspended"
	OperatorStatusRejected  OperatorStatus = "rejected"
)

// Operator is a read model over the operator collaborator. Only the
// approval status matters to payout eligibility.
type Operator struct {
	Base
	Name   string         `db:"name"`
	Status OperatorStatus `db:"status"`
}
