package auth

// Result is the outcome of one authentication attempt.
type Result int

// Authentication outcomes.
const (
	// Successful means the disk answered every challenge and is genuine.
	Successful Result = iota
	// FailedToEnterHealthReportMode means the disk never acknowledged the knock sequence.
	FailedToEnterHealthReportMode
	// FailedToGetControllerType means the controller type sector could not be read.
	FailedToGetControllerType
	// FailedToAuthenticate means the final response did not match the expected digest,
	// or the controller type has no registered key tables.
	FailedToAuthenticate
	// UnsupportedDiskState means the disk cannot be authenticated in its current state.
	UnsupportedDiskState
)

// String returns the outcome name.
func (r Result) String() string {
	switch r {
	case Successful:
		return "Successful"
	case FailedToEnterHealthReportMode:
		return "FailedToEnterHealthReportMode"
	case FailedToGetControllerType:
		return "FailedToGetControllerType"
	case FailedToAuthenticate:
		return "FailedToAuthenticate"
	case UnsupportedDiskState:
		return "UnsupportedDiskState"
	default:
		return "Unknown"
	}
}
