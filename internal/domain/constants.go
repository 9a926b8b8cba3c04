package domain

// AdStatus is the lifecycle state of an ad request.
type AdStatus string

// Ad Request Statuses
const (
	AdStatusPending     AdStatus = "pending"
	AdStatusApproved    AdStatus = "approved"
	AdStatusDeclined    AdStatus = "declined"
	AdStatusDeactivated AdStatus = "deactivated"
)

// Decisions accepted by the decision endpoint
const (
	DecisionApprove = "approve"
	DecisionDecline = "decline"
)

// List Exports for API
var AdStatuses = []AdStatus{
	AdStatusPending,
	AdStatusApproved,
	AdStatusDeclined,
	AdStatusDeactivated,
}

// adTransitions is the whole state machine. Declined and deactivated are terminal.
var adTransitions = map[AdStatus][]AdStatus{
	AdStatusPending:  {AdStatusApproved, AdStatusDeclined},
	AdStatusApproved: {AdStatusDeactivated},
}

// CanTransition reports whether from -> to is a legal move.
func (s AdStatus) CanTransition(to AdStatus) bool {
	for _, next := range adTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s AdStatus) IsTerminal() bool {
	return len(adTransitions[s]) == 0
}

func (s AdStatus) Valid() bool {
	for _, known := range AdStatuses {
		if s == known {
			return true
		}
	}
	return false
}
