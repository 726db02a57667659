package room

import "fmt"

type Status string

const (
	StatusVacant      Status = "VACANT"
	StatusReserved    Status = "RESERVED"
	StatusOccupied    Status = "OCCUPIED"
	StatusMaintenance Status = "MAINTENANCE"
)

// DefaultStatus is applied when a submission omits status.
const DefaultStatus = StatusVacant

// Statuses lists the closed set in display order.
var Statuses = []Status{StatusVacant, StatusReserved, StatusOccupied, StatusMaintenance}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusVacant, StatusReserved, StatusOccupied, StatusMaintenance:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// CanTransition reports whether a room may move from one status to another.
// Every status may be set to any other through an update.
func CanTransition(from, to Status) bool {
	_, errFrom := ParseStatus(string(from))
	_, errTo := ParseStatus(string(to))
	return errFrom == nil && errTo == nil
}
