package cardsim

import (
	"bytes"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// Mode is the emulated firmware mode.
type Mode int

// Firmware modes.
const (
	ModeIdle           Mode = iota // Normal storage
	ModeHealthReport               // Knock sequence accepted
	ModeAuthenticating             // Challenge rounds in progress
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeHealthReport:
		return "health-report"
	case ModeAuthenticating:
		return "authenticating"
	default:
		return "unknown"
	}
}

// firmware holds the command state of the emulated controller.
type firmware struct {
	mode  Mode
	knock int
	round int
	hash  *auth.RoundHash
}

func (f *firmware) reset() {
	f.mode = ModeIdle
	f.round = 0
	f.hash = nil
}

// command interprets a read at sector. It returns false when the read is
// ordinary data. Must be called with c.mutex held.
func (c *Card) command(sector int64) ([]byte, bool) {
	f := &c.fw

	// Knock tracking runs in every mode. Any other read breaks the sequence.
	if sector == auth.KnockSequence[f.knock] {
		f.knock++
		if f.knock < len(auth.KnockSequence) {
			return nil, true
		}
		f.knock = 0
		f.reset()
		f.mode = ModeHealthReport
		pkg.LogDebug(pkg.ComponentSim, "entered health report mode", "card", c.name)
		return auth.HealthReportEntered, true
	}
	f.knock = 0
	if sector == auth.KnockSequence[0] {
		f.knock = 1
		return nil, true
	}

	switch {
	case sector >= auth.ArgBase:
		return c.argument(sector), true

	case sector == auth.ControllerTypeSector && f.mode == ModeHealthReport:
		pkg.LogDebug(pkg.ComponentSim, "controller type requested", "card", c.name)
		return []byte{byte(c.controller)}, true

	case isBeginSector(sector) && f.mode == ModeHealthReport:
		h, err := auth.NewRoundHash(auth.MessageRounds, c.tables)
		if err != nil {
			f.reset()
			return nil, true
		}
		f.mode = ModeAuthenticating
		f.round = 0
		f.hash = h
		pkg.LogDebug(pkg.ComponentSim, "authentication started", "card", c.name)
		return nil, true
	}

	return nil, false
}

// argument handles a read in the argument command range. Only the next
// expected round is accepted; anything else returns the firmware to idle.
func (c *Card) argument(sector int64) []byte {
	f := &c.fw
	index := int((sector - auth.ArgBase) / auth.ArgInterval)
	word := uint16((sector % auth.ArgInterval) >> auth.ArgShift)

	if f.mode != ModeAuthenticating || index != f.round {
		f.reset()
		return nil
	}

	f.round++
	last := f.round == f.hash.Rounds()
	digest, err := f.hash.Generate(word, f.round, last)
	if err != nil || !last {
		if err != nil {
			f.reset()
		}
		return nil
	}

	f.reset()
	if c.counterfeit {
		return bytes.Repeat([]byte{0xA5}, len(digest))
	}
	pkg.LogDebug(pkg.ComponentSim, "challenge answered", "card", c.name)
	return digest
}

func isBeginSector(sector int64) bool {
	return sector < auth.ArgBase &&
		sector&auth.AuthenticateSector == auth.AuthenticateSector &&
		sector&^(auth.AuthenticateSector|auth.CommandRandomMask) == 0
}
