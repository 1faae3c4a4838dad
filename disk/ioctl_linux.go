//go:build linux

package disk

import (
	"golang.org/x/sys/unix"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// checkSectorSize warns when the block device reports a logical sector size
// other than auth.SectorSize. Regular files are not block devices and are
// ignored.
func checkSectorSize(d *FileDisk) {
	size, err := unix.IoctlGetInt(int(d.file.Fd()), unix.BLKSSZGET)
	if err != nil {
		pkg.LogDebug(pkg.ComponentDisk, "logical sector size unavailable", "disk", d.name, "error", err)
		return
	}
	if size != auth.SectorSize {
		pkg.LogWarn(pkg.ComponentDisk, "unexpected logical sector size",
			"disk", d.name, "size", size, "expected", auth.SectorSize)
	}
}
