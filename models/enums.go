package models

// ItemStatus is the closed lifecycle of a physical unit. The only legal
// transition is received -> dispatched, exactly once, never reversed.
type ItemStatus string

const (
	ItemStatusReceived   ItemStatus = "received"
	ItemStatusDispatched ItemStatus = "dispatched"
)

// CanDispatch reports whether the status permits the single legal transition.
func (s ItemStatus) CanDispatch() bool {
	return s == ItemStatusReceived
}

type AlertUrgency string

const (
	AlertUrgencyWarning  AlertUrgency = "warning"
	AlertUrgencyCritical AlertUrgency = "critical"
)
