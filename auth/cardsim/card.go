package cardsim

import (
	"fmt"
	"sync"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// Card is an in-memory emulated card that implements [auth.Disk].
//
// Ordinary sectors are stored sparsely and read back as zeros until
// written. Reads whose address is a firmware command are answered by the
// emulated firmware instead.
type Card struct {
	name        string
	controller  auth.ControllerType
	tables      auth.KeyTable
	counterfeit bool
	ready       bool
	locked      bool
	closed      bool

	sectors map[int64][]byte
	cursor  int64

	fw firmware

	mutex sync.Mutex
}

// New creates an emulated card of the given controller type answering
// challenges with the tables kt.
func New(ct auth.ControllerType, kt auth.KeyTable) (*Card, error) {
	if err := kt.Validate(); err != nil {
		return nil, err
	}
	return &Card{
		name:       fmt.Sprintf("sim:%d", ct),
		controller: ct,
		tables:     kt,
		ready:      true,
		sectors:    make(map[int64][]byte),
	}, nil
}

// NewFromRegistry creates an emulated card using the tables registered for ct.
// Unregistered controller types get throwaway tables, so the card reports
// its type but can never answer a challenge correctly.
func NewFromRegistry(reg *auth.Registry, ct auth.ControllerType) (*Card, error) {
	kt, ok := reg.Lookup(ct)
	if !ok {
		kt = auth.KeyTable{T1: []byte{0}, T2: []byte{0}, T3: []byte{0}}
	}
	return New(ct, kt)
}

// SetName overrides the display name.
func (c *Card) SetName(name string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.name = name
}

// SetCounterfeit makes the card answer the final challenge round with a
// wrong digest while behaving normally otherwise.
func (c *Card) SetCounterfeit(counterfeit bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.counterfeit = counterfeit
}

// SetReady sets the value reported by IsReadyForAuthentication.
func (c *Card) SetReady(ready bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.ready = ready
}

// WriteSector stores ordinary data at sector. Data longer than a sector is
// truncated.
func (c *Card) WriteSector(sector int64, data []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	buf := make([]byte, auth.SectorSize)
	copy(buf, data)
	c.sectors[sector] = buf
}

// Mode returns the current firmware mode.
func (c *Card) Mode() Mode {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.fw.mode
}

// IsLocked reports whether the card is held by Lock.
func (c *Card) IsLocked() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.locked
}

// =============================================================================
// auth.Disk
// =============================================================================

// Name returns the display name.
func (c *Card) Name() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.name
}

// SeekSector positions the read cursor.
func (c *Card) SeekSector(sector int64) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return pkg.ErrDiskClosed
	}
	if sector < 0 {
		return fmt.Errorf("%w: sector %d", pkg.ErrInvalidParameter, sector)
	}
	c.cursor = sector
	return nil
}

// ReadSectors reads n sectors from the cursor. Only the first sector of a
// read is interpreted as a firmware command.
func (c *Card) ReadSectors(n int) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return nil, pkg.ErrDiskClosed
	}
	if n <= 0 {
		return nil, nil
	}

	buf := make([]byte, n*auth.SectorSize)
	if resp, ok := c.command(c.cursor); ok {
		copy(buf, resp)
	} else {
		copy(buf, c.sectors[c.cursor])
	}
	for i := 1; i < n; i++ {
		copy(buf[i*auth.SectorSize:], c.sectors[c.cursor+int64(i)])
	}
	c.cursor += int64(n)
	return buf, nil
}

// Lock takes the card for exclusive use. It fails if the card is already
// locked or closed.
func (c *Card) Lock() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed || c.locked {
		return false
	}
	c.locked = true
	return true
}

// Unlock releases the card.
func (c *Card) Unlock() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed || !c.locked {
		return false
	}
	c.locked = false
	return true
}

// IsReadyForAuthentication reports whether the card can be authenticated.
func (c *Card) IsReadyForAuthentication() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.ready && !c.closed
}

// Close releases the card. Later operations fail with [pkg.ErrDiskClosed].
func (c *Card) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.closed = true
	c.locked = false
	return nil
}
