package auth

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ardnew/cardauth/pkg"
)

// Authenticator runs the challenge-response protocol against one disk.
//
// The protocol is driven entirely through one-sector reads whose addresses
// encode firmware commands:
//
//  1. Reset: 20 filler argument commands return the firmware to idle.
//  2. Knock: a fixed four-read sequence enters health report mode,
//     retried up to [HealthReportAttempts] times.
//  3. Controller type: one read selects the key tables for the session.
//  4. Challenge: a begin command followed by [MessageRounds] argument
//     commands; the last response must equal the expected digest.
//
// An Authenticator is not safe for concurrent use. Callers must serialize
// access to the underlying disk.
type Authenticator struct {
	disk     Disk
	registry *Registry
	words    WordSource
}

// New creates an authenticator for disk using the built-in key tables and
// a freshly seeded word source.
func New(disk Disk) *Authenticator {
	return &Authenticator{
		disk:     disk,
		registry: DefaultRegistry(),
		words:    NewWordSource(),
	}
}

// SetRegistry replaces the key table registry.
func (a *Authenticator) SetRegistry(r *Registry) {
	if r != nil {
		a.registry = r
	}
}

// SetWordSource replaces the source of filler, challenge and command words.
func (a *Authenticator) SetWordSource(src WordSource) {
	if src != nil {
		a.words = src
	}
}

// Authenticate runs one authentication session and returns its outcome.
//
// If lock is set, exclusive access is requested before any protocol I/O and
// released before returning, whatever the outcome. Operational faults such
// as a failed lock or a sector read error are returned as errors; protocol
// outcomes are always returned as a [Result].
func (a *Authenticator) Authenticate(lock bool) (result Result, err error) {
	if a.disk == nil {
		return UnsupportedDiskState, fmt.Errorf("%w: nil disk", pkg.ErrInvalidParameter)
	}
	name := a.disk.Name()

	if !a.disk.IsReadyForAuthentication() {
		pkg.LogInfo(pkg.ComponentAuth, "disk not ready for authentication", "disk", name)
		return UnsupportedDiskState, nil
	}

	if lock {
		locked := a.disk.Lock()
		defer func() {
			if !a.disk.Unlock() {
				pkg.LogWarn(pkg.ComponentAuth, "failed to unlock disk", "disk", name)
			}
		}()
		if !locked {
			return FailedToAuthenticate, fmt.Errorf("%s: %w", name, pkg.ErrLockFailed)
		}
	}

	// Leave any exchange a previous attempt abandoned midway.
	if err := a.resetSession(); err != nil {
		return FailedToAuthenticate, err
	}

	entered := false
	for attempt := 1; attempt <= HealthReportAttempts; attempt++ {
		ok, err := a.enterHealthReportMode()
		if err != nil {
			return FailedToEnterHealthReportMode, err
		}
		if ok {
			pkg.LogDebug(pkg.ComponentAuth, "entered health report mode", "disk", name, "attempt", attempt)
			entered = true
			break
		}
		pkg.LogWarn(pkg.ComponentAuth, "health report mode not acknowledged", "disk", name, "attempt", attempt)
	}
	if !entered {
		return FailedToEnterHealthReportMode, nil
	}

	// The controller type must be read before the challenge begins.
	ct, err := a.controllerType()
	if err != nil {
		pkg.LogWarn(pkg.ComponentAuth, "failed to read controller type", "disk", name, "error", err)
		return FailedToGetControllerType, nil
	}
	pkg.LogDebug(pkg.ComponentAuth, "controller type", "disk", name, "type", uint8(ct))

	ok, err := a.challenge(ct)
	if err != nil {
		return FailedToAuthenticate, err
	}
	if !ok {
		return FailedToAuthenticate, nil
	}
	return Successful, nil
}

func (a *Authenticator) resetSession() error {
	filler := NonZeroWords(a.words, ResetRounds)
	for i, w := range filler {
		if _, err := a.readSectorAt(ArgSector(i, w)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Authenticator) enterHealthReportMode() (bool, error) {
	var response []byte
	for _, sector := range KnockSequence {
		var err error
		if response, err = a.readSectorAt(sector); err != nil {
			return false, err
		}
	}
	return bytes.HasPrefix(response, HealthReportEntered), nil
}

func (a *Authenticator) controllerType() (ControllerType, error) {
	buf, err := a.readSectorAt(ControllerTypeSector)
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, fmt.Errorf("controller type sector: %w", pkg.ErrShortRead)
	}
	return ControllerType(buf[0]), nil
}

// challenge runs the begin command and the message rounds. An unregistered
// controller type is indistinguishable from a wrong answer.
func (a *Authenticator) challenge(ct ControllerType) (bool, error) {
	kt, ok := a.registry.Lookup(ct)
	if !ok {
		pkg.LogInfo(pkg.ComponentAuth, "no key tables for controller", "type", uint8(ct))
		return false, nil
	}

	message := NonZeroWords(a.words, MessageRounds)
	h, err := NewRoundHash(len(message), kt)
	if err != nil {
		return false, err
	}

	if _, err := a.readSectorAt(BeginSector(uint32(a.words.Uint64()))); err != nil {
		return false, err
	}

	last := len(message) - 1
	for i, w := range message {
		digest, err := h.Generate(w, i+1, i == last)
		if err != nil {
			return false, err
		}
		response, err := a.readSectorAt(ArgSector(i, w))
		if err != nil {
			return false, err
		}
		if i == last {
			if len(response) < len(digest) {
				pkg.LogDebug(pkg.ComponentAuth, "short challenge response", "bytes", len(response))
				return false, nil
			}
			return bytes.Equal(digest, response[:len(digest)]), nil
		}
	}
	return false, errors.New("empty challenge message")
}

func (a *Authenticator) readSectorAt(sector int64) ([]byte, error) {
	if err := a.disk.SeekSector(sector); err != nil {
		return nil, fmt.Errorf("seek sector %#x: %w", sector, err)
	}
	buf, err := a.disk.ReadSectors(1)
	if err != nil {
		return nil, fmt.Errorf("read sector %#x: %w", sector, err)
	}
	return buf, nil
}
