package disk

import (
	"io"

	"github.com/ardnew/cardauth/auth"
)

// Disk is a platform block device usable by the authenticator.
// Close releases the underlying handles; later operations fail with
// [pkg.ErrDiskClosed].
type Disk interface {
	auth.Disk
	io.Closer
}

// Volume describes one device available for authentication.
type Volume struct {
	ID        string // Identifier accepted by Platform.Open
	Name      string // Kernel name or drive letter
	Vendor    string // Vendor string reported by the device
	Model     string // Model string reported by the device
	VendorID  uint16 // USB vendor ID of the bridge, zero if unknown
	ProductID uint16 // USB product ID of the bridge, zero if unknown
	Size      int64  // Capacity in bytes, zero if unknown
}

// Platform enumerates and opens disks on the host operating system.
type Platform interface {
	// Volumes lists the devices that can be authenticated.
	Volumes() ([]Volume, error)

	// Open opens the device with the given identifier.
	Open(id string) (Disk, error)
}

// Find returns the volume with the given identifier.
func Find(p Platform, id string) (Volume, bool, error) {
	vols, err := p.Volumes()
	if err != nil {
		return Volume{}, false, err
	}
	for _, v := range vols {
		if v.ID == id {
			return v, true, nil
		}
	}
	return Volume{}, false, nil
}
