package auth

// SectorSize is the fixed size of one disk sector in bytes.
const SectorSize = 512

// Disk is the block device capability the authenticator drives.
//
// Implementations are owned by the caller, which opens the disk before
// constructing an [Authenticator] and releases it on every exit path.
// A Disk is not safe for concurrent use.
type Disk interface {
	// Name returns a human-readable identifier for the disk.
	Name() string

	// SeekSector positions the read cursor at byte offset sector*SectorSize.
	SeekSector(sector int64) error

	// ReadSectors reads up to n sectors from the cursor and advances it by the
	// number of bytes returned. A short read is not an error.
	ReadSectors(n int) ([]byte, error)

	// Lock obtains best-effort exclusive access. Platforms without a
	// meaningful exclusive mode return true.
	Lock() bool

	// Unlock releases exclusive access obtained by Lock.
	Unlock() bool

	// IsReadyForAuthentication reports false when the disk is in a state
	// the protocol cannot work with, such as an encrypted volume.
	IsReadyForAuthentication() bool
}
