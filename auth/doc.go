// Package auth verifies that a removable storage device is a genuine card of
// a specific vendor family.
//
// The vendor protocol is smuggled through ordinary block reads: a command and
// its argument are encoded in the sector address of a one-sector read, and
// the card firmware answers with crafted sector contents instead of data.
// The package consumes an abstract [Disk] and produces a [Result].
//
// # Usage
//
//	a := auth.New(disk)
//	result, err := a.Authenticate(true)
//	if err != nil {
//	    // Operational fault: lock failure, I/O error, closed disk
//	}
//	fmt.Println(result) // Successful, FailedToAuthenticate, ...
//
// # Key Tables
//
// Each controller type has three substitution tables combined by XOR into a
// per-round HMAC-SHA256 key (see [RoundHash]). The tables live in a
// [Registry]; [DefaultRegistry] holds the known controllers and further
// types can be registered without touching the protocol.
//
// # Randomness
//
// Filler, challenge and command words come from a [WordSource], which tests
// may replace with a deterministic sequence via
// [Authenticator.SetWordSource].
package auth
