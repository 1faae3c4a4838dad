package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ardnew/cardauth/pkg"
)

// RoundHash derives a per-round HMAC-SHA256 key from a controller's key
// tables and hashes the accumulated message words.
//
// The message buffer holds one little-endian 16-bit slot per round and
// starts zeroed. A RoundHash is used by a single session and is not safe
// for concurrent use.
type RoundHash struct {
	rounds int
	tables KeyTable
	buf    []byte
}

// NewRoundHash creates a generator for a message of the given number of
// rounds using the tables kt.
func NewRoundHash(rounds int, kt KeyTable) (*RoundHash, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: rounds must be positive, got %d", pkg.ErrInvalidParameter, rounds)
	}
	if err := kt.Validate(); err != nil {
		return nil, err
	}
	return &RoundHash{
		rounds: rounds,
		tables: kt.clone(),
		buf:    make([]byte, rounds*2),
	}, nil
}

// Rounds returns the message length in words.
func (h *RoundHash) Rounds() int {
	return h.rounds
}

// Message returns a copy of the message buffer.
func (h *RoundHash) Message() []byte {
	return append([]byte(nil), h.buf...)
}

// Generate records word as the 1-based round and, when compute is set,
// returns the digest of the whole message buffer under the key derived
// from word.
//
// Round 0 is a no-op that records nothing and returns no digest. Rounds
// beyond the message length fail with [pkg.ErrRoundOutOfRange].
func (h *RoundHash) Generate(word uint16, round int, compute bool) ([]byte, error) {
	if round < 0 || round > h.rounds {
		return nil, fmt.Errorf("%w: round %d of %d", pkg.ErrRoundOutOfRange, round, h.rounds)
	}
	if round == 0 {
		return nil, nil
	}

	binary.LittleEndian.PutUint16(h.buf[(round-1)*2:], word)
	if !compute {
		return nil, nil
	}

	mac := hmac.New(sha256.New, h.Key(word))
	mac.Write(h.buf)
	digest := mac.Sum(nil)

	pkg.LogDebug(pkg.ComponentHMAC, "round digest computed", "round", round)
	return digest, nil
}

// Key derives the 32-byte round key for word. Only the second table's
// index depends on the word.
func (h *RoundHash) Key(word uint16) []byte {
	t1, t2, t3 := h.tables.T1, h.tables.T2, h.tables.T3
	x := int(word) % h.rounds
	key := make([]byte, DigestSize)
	for i := range key {
		key[i] = t1[(h.rounds+i)%len(t1)] ^
			t2[(x+i)%len(t2)] ^
			t3[(h.rounds+i+5)%len(t3)]
	}
	return key
}
