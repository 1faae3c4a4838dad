package disk

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// FileDisk implements [Disk] over an open device node or disk image.
type FileDisk struct {
	name   string
	file   *os.File
	ready  func() bool
	closed bool
	mutex  sync.Mutex
}

// OpenFile opens the device node or image at path read-only.
func OpenFile(path string) (*FileDisk, error) {
	if path == "" {
		return nil, pkg.ErrInvalidParameter
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileDisk{name: path, file: f}, nil
}

// Name returns the path the disk was opened from.
func (d *FileDisk) Name() string {
	return d.name
}

// SeekSector positions the cursor at sector*auth.SectorSize.
func (d *FileDisk) SeekSector(sector int64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return pkg.ErrDiskClosed
	}
	_, err := d.file.Seek(sector*auth.SectorSize, io.SeekStart)
	return err
}

// ReadSectors reads up to n sectors. Reading past the end of the device
// returns the bytes obtained so far without error.
func (d *FileDisk) ReadSectors(n int) ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return nil, pkg.ErrDiskClosed
	}
	if n <= 0 {
		return nil, nil
	}

	buf := make([]byte, n*auth.SectorSize)
	read, err := io.ReadFull(d.file, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:read], nil
}

// Lock takes an exclusive advisory lock on the device.
func (d *FileDisk) Lock() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return false
	}
	if err := lockFile(d.file); err != nil {
		pkg.LogWarn(pkg.ComponentDisk, "lock failed", "disk", d.name, "error", err)
		return false
	}
	return true
}

// Unlock releases the lock taken by Lock.
func (d *FileDisk) Unlock() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return false
	}
	if err := unlockFile(d.file); err != nil {
		pkg.LogWarn(pkg.ComponentDisk, "unlock failed", "disk", d.name, "error", err)
		return false
	}
	return true
}

// IsReadyForAuthentication reports whether the disk is open and, if a
// platform check is installed, whether the device state allows it.
func (d *FileDisk) IsReadyForAuthentication() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return false
	}
	return d.ready == nil || d.ready()
}

// Close closes the underlying file. It is safe to call more than once.
func (d *FileDisk) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.file.Close()
}
