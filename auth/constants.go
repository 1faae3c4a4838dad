package auth

// =============================================================================
// Command Sector Addresses
// =============================================================================

// Commands are encoded in the sector number of an ordinary one-sector read.
// Argument-carrying commands place a 16-bit word at bit 5 of the address.
const (
	// ArgBase is the address of the first argument command.
	ArgBase = 0xC00000

	// ArgInterval separates consecutive argument command addresses.
	ArgInterval = 0x200000

	// ArgShift is the bit position of the word within an argument command.
	ArgShift = 5

	// ControllerTypeSector returns the controller type in its first byte.
	ControllerTypeSector = 0x544EE0

	// AuthenticateSector begins a challenge-response exchange.
	AuthenticateSector = 0x800020

	// CommandRandomMask selects the free bits of the begin-authentication address.
	CommandRandomMask = 0x1FFFDF
)

// KnockSequence is the ordered list of sectors that enters health report mode.
var KnockSequence = [...]int64{0x123420, 0x654340, 0x321560, 0x523480}

// HealthReportEntered is the response prefix returned after a successful knock.
var HealthReportEntered = []byte("ENTERED SAMSUNG CARD HEALTH REPORT MODE\x00")

// =============================================================================
// Session Parameters
// =============================================================================

const (
	// ResetRounds is the number of filler commands issued to reset the session.
	ResetRounds = 20

	// MessageRounds is the number of challenge words per authentication.
	MessageRounds = 16

	// HealthReportAttempts bounds the knock sequence retries.
	HealthReportAttempts = 5

	// DigestSize is the size of the round digest in bytes.
	DigestSize = 32
)

// ArgSector returns the address of argument command i carrying word.
func ArgSector(i int, word uint16) int64 {
	return int64(ArgBase+i*ArgInterval) | int64(word)<<ArgShift
}

// BeginSector returns the address of the begin-authentication command
// randomized by r.
func BeginSector(r uint32) int64 {
	return int64(AuthenticateSector | (r & CommandRandomMask))
}
