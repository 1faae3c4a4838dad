package pkg

import "errors"

// Operational errors. Authentication outcomes are reported as values, never
// through these.
var (
	// ErrLockFailed indicates exclusive access to the disk could not be obtained.
	ErrLockFailed = errors.New("failed to lock disk")

	// ErrDiskClosed indicates an operation on a disk that was already released.
	ErrDiskClosed = errors.New("disk closed")

	// ErrRoundOutOfRange indicates a round number beyond the message length.
	ErrRoundOutOfRange = errors.New("round out of range")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidKeyTable indicates a key table is empty or malformed.
	ErrInvalidKeyTable = errors.New("invalid key table")

	// ErrUnsupportedPlatform indicates the host platform has no disk implementation.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrDeviceNotFound indicates the requested device is not among the listed disks.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrShortRead indicates a device returned fewer bytes than a sector.
	ErrShortRead = errors.New("short read")
)
