package schema

// Status is the lifecycle flag stored in the active field of every document.
type Status int

const (
	// StatusDeleted marks a soft-deleted document. It is terminal.
	StatusDeleted Status = -1
	// StatusInactive marks a document that is tracked but disabled.
	StatusInactive Status = 0
	// StatusActive marks a live document.
	StatusActive Status = 1
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDeleted:
		return "DELETED"
	case StatusInactive:
		return "INACTIVE"
	case StatusActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}
