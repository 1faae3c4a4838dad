package auth

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/ardnew/cardauth/pkg"
)

func newTestAuthenticator(d Disk, seed uint64) *Authenticator {
	a := New(d)
	a.SetWordSource(rand.NewPCG(seed, seed^0x5a5a))
	return a
}

func TestAuthenticate_Successful(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller80)
	card := &genuineCard{controller: 80, kt: kt}
	d := newStubDisk(card.respond)

	result, err := newTestAuthenticator(d, 1).Authenticate(true)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != Successful {
		t.Errorf("Authenticate() = %v, want %v", result, Successful)
	}
	if d.locks != 1 || d.unlocks != 1 {
		t.Errorf("locks = %d, unlocks = %d, want 1 and 1", d.locks, d.unlocks)
	}
}

func TestAuthenticate_AllControllers(t *testing.T) {
	reg := DefaultRegistry()
	for _, ct := range reg.Controllers() {
		kt, _ := reg.Lookup(ct)
		card := &genuineCard{controller: byte(ct), kt: kt}
		for seed := uint64(0); seed < 8; seed++ {
			d := newStubDisk(card.respond)
			result, err := newTestAuthenticator(d, seed).Authenticate(false)
			if err != nil || result != Successful {
				t.Errorf("controller %d seed %d: Authenticate() = %v, %v", ct, seed, result, err)
			}
		}
	}
}

func TestAuthenticate_WrongDigest(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller80)
	card := &genuineCard{controller: 80, kt: kt, wrong: true}
	d := newStubDisk(card.respond)

	result, err := newTestAuthenticator(d, 2).Authenticate(false)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != FailedToAuthenticate {
		t.Errorf("Authenticate() = %v, want %v", result, FailedToAuthenticate)
	}
}

func TestAuthenticate_WrongTables(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller176)
	card := &genuineCard{controller: 80, kt: kt}
	d := newStubDisk(card.respond)

	result, err := newTestAuthenticator(d, 3).Authenticate(false)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != FailedToAuthenticate {
		t.Errorf("Authenticate() = %v, want %v", result, FailedToAuthenticate)
	}
}

func TestAuthenticate_UnknownControllerType(t *testing.T) {
	reg := DefaultRegistry()
	kt, _ := reg.Lookup(Controller80)
	for ct := 0; ct < 256; ct++ {
		if _, ok := reg.Lookup(ControllerType(ct)); ok {
			continue
		}
		card := &genuineCard{controller: byte(ct), kt: kt}
		d := newStubDisk(card.respond)
		result, err := newTestAuthenticator(d, uint64(ct)).Authenticate(false)
		if err != nil {
			t.Fatalf("controller %d: Authenticate() error = %v", ct, err)
		}
		if result != FailedToAuthenticate {
			t.Errorf("controller %d: Authenticate() = %v, want %v", ct, result, FailedToAuthenticate)
		}
	}
}

func TestAuthenticate_CustomRegistry(t *testing.T) {
	kt := KeyTable{T1: []byte{1, 2, 3}, T2: []byte{4, 5, 6, 7, 8}, T3: []byte{9}}
	reg := NewRegistry()
	if err := reg.Register(0x42, kt); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	card := &genuineCard{controller: 0x42, kt: kt}
	d := newStubDisk(card.respond)

	a := newTestAuthenticator(d, 4)
	a.SetRegistry(reg)
	result, err := a.Authenticate(false)
	if err != nil || result != Successful {
		t.Errorf("Authenticate() = %v, %v; want %v", result, err, Successful)
	}
}

func TestAuthenticate_HealthReportModeNeverEntered(t *testing.T) {
	d := newStubDisk(func(int64) []byte { return []byte("ENTERED SAMSUNG CARD HEALTH REPORT MODX") })

	result, err := newTestAuthenticator(d, 5).Authenticate(true)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != FailedToEnterHealthReportMode {
		t.Errorf("Authenticate() = %v, want %v", result, FailedToEnterHealthReportMode)
	}
	if d.unlocks != 1 {
		t.Errorf("unlocks = %d, want 1", d.unlocks)
	}

	// Reset, then five full knock sequences, and nothing after.
	wantReads := ResetRounds + HealthReportAttempts*len(KnockSequence)
	if len(d.reads) != wantReads {
		t.Fatalf("reads = %d, want %d", len(d.reads), wantReads)
	}
	for i, sector := range d.reads[ResetRounds:] {
		if want := KnockSequence[i%len(KnockSequence)]; sector != want {
			t.Errorf("knock read %d = %#x, want %#x", i, sector, want)
		}
	}
}

func TestAuthenticate_HealthReportModeRetry(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller80)
	card := &genuineCard{controller: 80, kt: kt}
	failures := 0
	d := newStubDisk(func(sector int64) []byte {
		resp := card.respond(sector)
		if sector == KnockSequence[len(KnockSequence)-1] && failures < HealthReportAttempts-1 {
			failures++
			return nil
		}
		return resp
	})

	result, err := newTestAuthenticator(d, 6).Authenticate(false)
	if err != nil || result != Successful {
		t.Errorf("Authenticate() = %v, %v; want %v", result, err, Successful)
	}
	if failures != HealthReportAttempts-1 {
		t.Errorf("failures = %d, want %d", failures, HealthReportAttempts-1)
	}
}

func TestAuthenticate_ZeroKnockResponse(t *testing.T) {
	d := newStubDisk(nil)
	d.respond = func(int64) []byte { return nil }
	result, err := newTestAuthenticator(d, 7).Authenticate(false)
	if err != nil || result != FailedToEnterHealthReportMode {
		t.Errorf("Authenticate() = %v, %v; want %v", result, err, FailedToEnterHealthReportMode)
	}
}

func TestAuthenticate_UnsupportedDiskState(t *testing.T) {
	d := newStubDisk(nil)
	d.ready = false

	result, err := newTestAuthenticator(d, 8).Authenticate(true)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != UnsupportedDiskState {
		t.Errorf("Authenticate() = %v, want %v", result, UnsupportedDiskState)
	}
	if !slices.Equal(d.calls, []string{"ready"}) {
		t.Errorf("calls = %v, want only the readiness check", d.calls)
	}
}

func TestAuthenticate_LockFailed(t *testing.T) {
	d := newStubDisk(nil)
	d.lockOK = false

	_, err := newTestAuthenticator(d, 9).Authenticate(true)
	if !errors.Is(err, pkg.ErrLockFailed) {
		t.Fatalf("Authenticate() error = %v, want ErrLockFailed", err)
	}
	if d.unlocks != 1 {
		t.Errorf("unlocks = %d, want 1", d.unlocks)
	}
	if len(d.reads) != 0 {
		t.Errorf("reads = %d, want 0", len(d.reads))
	}
}

func TestAuthenticate_NoLockRequested(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller80)
	card := &genuineCard{controller: 80, kt: kt}
	d := newStubDisk(card.respond)

	if _, err := newTestAuthenticator(d, 10).Authenticate(false); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if d.locks != 0 || d.unlocks != 0 {
		t.Errorf("locks = %d, unlocks = %d, want 0 and 0", d.locks, d.unlocks)
	}
}

func TestAuthenticate_ReadFaultUnlocks(t *testing.T) {
	d := newStubDisk(nil)
	d.readErr = func(sector int64) error {
		if sector == KnockSequence[1] {
			return errStubIO
		}
		return nil
	}

	_, err := newTestAuthenticator(d, 11).Authenticate(true)
	if !errors.Is(err, errStubIO) {
		t.Fatalf("Authenticate() error = %v, want %v", err, errStubIO)
	}
	if d.unlocks != 1 {
		t.Errorf("unlocks = %d, want 1", d.unlocks)
	}
}

func TestAuthenticate_ControllerTypeReadFault(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller80)
	card := &genuineCard{controller: 80, kt: kt}
	d := newStubDisk(card.respond)
	d.readErr = func(sector int64) error {
		if sector == ControllerTypeSector {
			return errStubIO
		}
		return nil
	}

	result, err := newTestAuthenticator(d, 12).Authenticate(true)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result != FailedToGetControllerType {
		t.Errorf("Authenticate() = %v, want %v", result, FailedToGetControllerType)
	}
	if d.unlocks != 1 {
		t.Errorf("unlocks = %d, want 1", d.unlocks)
	}
}

func TestAuthenticate_ResetIssuesTwentyReads(t *testing.T) {
	for seed := uint64(0); seed < 32; seed++ {
		d := newStubDisk(nil)
		if _, err := newTestAuthenticator(d, seed).Authenticate(false); err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		for i, sector := range d.reads[:ResetRounds] {
			base := int64(ArgBase + i*ArgInterval)
			if sector&^(ArgInterval-1) != base {
				t.Errorf("seed %d: reset read %d = %#x, want base %#x", seed, i, sector, base)
			}
			if sector == base {
				t.Errorf("seed %d: reset read %d carries a zero word", seed, i)
			}
		}
		if d.reads[ResetRounds] != KnockSequence[0] {
			t.Errorf("seed %d: read %d = %#x, want first knock", seed, ResetRounds, d.reads[ResetRounds])
		}
	}
}

func TestAuthenticate_CommandSequence(t *testing.T) {
	kt, _ := DefaultRegistry().Lookup(Controller179)
	card := &genuineCard{controller: 179, kt: kt}
	d := newStubDisk(card.respond)

	if result, err := newTestAuthenticator(d, 13).Authenticate(false); err != nil || result != Successful {
		t.Fatalf("Authenticate() = %v, %v", result, err)
	}

	reads := d.reads[ResetRounds:]
	for i, want := range KnockSequence {
		if reads[i] != want {
			t.Errorf("knock %d = %#x, want %#x", i, reads[i], want)
		}
	}
	reads = reads[len(KnockSequence):]
	if reads[0] != ControllerTypeSector {
		t.Errorf("controller read = %#x, want %#x", reads[0], ControllerTypeSector)
	}
	if reads[1]&AuthenticateSector != AuthenticateSector || reads[1] >= ArgBase {
		t.Errorf("begin read = %#x, want begin-authentication command", reads[1])
	}
	rounds := reads[2:]
	if len(rounds) != MessageRounds {
		t.Fatalf("rounds = %d, want %d", len(rounds), MessageRounds)
	}
	for i, sector := range rounds {
		if base := int64(ArgBase + i*ArgInterval); sector&^(ArgInterval-1) != base {
			t.Errorf("round %d = %#x, want base %#x", i, sector, base)
		}
	}
}

func TestAuthenticate_NilDisk(t *testing.T) {
	a := &Authenticator{registry: DefaultRegistry(), words: NewWordSource()}
	if _, err := a.Authenticate(false); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidParameter", err)
	}
}

func TestResultString(t *testing.T) {
	tests := []struct {
		result Result
		want   string
	}{
		{Successful, "Successful"},
		{FailedToEnterHealthReportMode, "FailedToEnterHealthReportMode"},
		{FailedToGetControllerType, "FailedToGetControllerType"},
		{FailedToAuthenticate, "FailedToAuthenticate"},
		{UnsupportedDiskState, "UnsupportedDiskState"},
		{Result(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.result.String(); got != tt.want {
				t.Errorf("Result.String() = %v, want %v", got, tt.want)
			}
		})
	}
}
