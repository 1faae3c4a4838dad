package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// stubDisk is a scripted Disk. Responses are produced by respond, which
// receives the sector of each one-sector read.
type stubDisk struct {
	ready   bool
	lockOK  bool
	respond func(sector int64) []byte
	readErr func(sector int64) error
	cursor  int64
	reads   []int64
	calls   []string
	locks   int
	unlocks int
}

func newStubDisk(respond func(sector int64) []byte) *stubDisk {
	return &stubDisk{ready: true, lockOK: true, respond: respond}
}

func (d *stubDisk) Name() string { return "stub" }

func (d *stubDisk) SeekSector(sector int64) error {
	d.calls = append(d.calls, "seek")
	d.cursor = sector
	return nil
}

func (d *stubDisk) ReadSectors(n int) ([]byte, error) {
	d.calls = append(d.calls, "read")
	d.reads = append(d.reads, d.cursor)
	if d.readErr != nil {
		if err := d.readErr(d.cursor); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, n*SectorSize)
	if d.respond != nil {
		copy(buf, d.respond(d.cursor))
	}
	d.cursor += int64(n)
	return buf, nil
}

func (d *stubDisk) Lock() bool {
	d.calls = append(d.calls, "lock")
	d.locks++
	return d.lockOK
}

func (d *stubDisk) Unlock() bool {
	d.calls = append(d.calls, "unlock")
	d.unlocks++
	return true
}

func (d *stubDisk) IsReadyForAuthentication() bool {
	d.calls = append(d.calls, "ready")
	return d.ready
}

// scriptedSource replays a fixed sequence of values, repeating the last one.
type scriptedSource struct {
	values []uint64
	pos    int
}

func (s *scriptedSource) Uint64() uint64 {
	if len(s.values) == 0 {
		return 1
	}
	v := s.values[min(s.pos, len(s.values)-1)]
	s.pos++
	return v
}

// genuineCard answers like a card of the given controller type whose key
// tables are kt. The final digest is computed here without RoundHash.
type genuineCard struct {
	controller byte
	kt         KeyTable
	knock      int
	words      []uint16
	wrong      bool
}

func (c *genuineCard) respond(sector int64) []byte {
	switch {
	case c.knock < len(KnockSequence) && sector == KnockSequence[c.knock]:
		c.knock++
		if c.knock == len(KnockSequence) {
			c.knock = 0
			return HealthReportEntered
		}
		return nil
	case sector == ControllerTypeSector:
		return []byte{c.controller}
	case sector >= ArgBase:
		i := int((sector - ArgBase) / ArgInterval)
		w := uint16((sector & (ArgInterval - 1)) >> ArgShift)
		if i == 0 {
			c.words = c.words[:0]
		}
		c.words = append(c.words, w)
		if i == MessageRounds-1 && len(c.words) == MessageRounds {
			if c.wrong {
				return make([]byte, DigestSize)
			}
			return expectedDigest(c.kt, c.words)
		}
	}
	c.knock = 0
	return nil
}

func expectedDigest(kt KeyTable, words []uint16) []byte {
	n := len(words)
	msg := make([]byte, 2*n)
	for i, w := range words {
		binary.LittleEndian.PutUint16(msg[2*i:], w)
	}
	last := int(words[n-1]) % n
	key := make([]byte, 32)
	for i := range key {
		key[i] = kt.T1[(n+i)%len(kt.T1)] ^ kt.T2[(last+i)%len(kt.T2)] ^ kt.T3[(n+i+5)%len(kt.T3)]
	}
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	return mac.Sum(nil)
}

var errStubIO = errors.New("stub I/O failure")
