package domain

import "strings"

// Status is the urgency tier assigned to an analyzed product.
type Status string

const (
	StatusCritical  Status = "CRITICAL"
	StatusReorder   Status = "REORDER"
	StatusOverstock Status = "OVERSTOCK"
	StatusOptimal   Status = "OPTIMAL"
)

// Statuses lists every status in urgency order.
var Statuses = []Status{StatusCritical, StatusReorder, StatusOverstock, StatusOptimal}

var statusUrgency = map[Status]int{
	StatusCritical:  0,
	StatusReorder:   1,
	StatusOverstock: 2,
	StatusOptimal:   3,
}

// Urgency returns the sort rank of a status; lower is more urgent.
// Unknown statuses sort last.
func (s Status) Urgency() int {
	if rank, ok := statusUrgency[s]; ok {
		return rank
	}

	return len(statusUrgency)
}

// ParseStatus returns the status for a given label (case-insensitive).
func ParseStatus(label string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(label)))
	_, ok := statusUrgency[s]

	return s, ok
}
