//go:build linux

package disk

import (
	"path/filepath"
	"strings"

	"github.com/ardnew/cardauth/pkg"
)

// LinuxPlatform lists removable block devices from sysfs and opens their
// device nodes.
type LinuxPlatform struct {
	sysfsRoot string
	devRoot   string
}

// Default returns the disk platform of the host operating system.
func Default() (Platform, error) {
	return NewLinuxPlatform(SysfsBlockPath, DevPath), nil
}

// NewLinuxPlatform creates a platform reading sysfs at sysfsRoot and device
// nodes under devRoot.
func NewLinuxPlatform(sysfsRoot, devRoot string) *LinuxPlatform {
	return &LinuxPlatform{sysfsRoot: sysfsRoot, devRoot: devRoot}
}

// Volumes lists removable block devices with media present.
func (p *LinuxPlatform) Volumes() ([]Volume, error) {
	devices, err := scanBlockDevices(p.sysfsRoot)
	if err != nil {
		return nil, err
	}

	var vols []Volume
	for _, dev := range devices {
		if !dev.removable || dev.sectors == 0 {
			continue
		}
		vols = append(vols, Volume{
			ID:        filepath.Join(p.devRoot, dev.name),
			Name:      dev.name,
			Vendor:    dev.vendor,
			Model:     dev.model,
			VendorID:  dev.vendorID,
			ProductID: dev.productID,
			Size:      int64(dev.sectors) * sysfsSectorSize,
		})
	}
	return vols, nil
}

// Open opens the device node id. The disk reports itself not ready while
// another device, such as a dm-crypt mapping, holds it.
func (p *LinuxPlatform) Open(id string) (Disk, error) {
	d, err := OpenFile(id)
	if err != nil {
		return nil, err
	}
	checkSectorSize(d)

	name := filepath.Base(id)
	if !strings.HasPrefix(filepath.Clean(id), filepath.Clean(p.devRoot)+string(filepath.Separator)) {
		return d, nil
	}
	sysfsPath := filepath.Join(p.sysfsRoot, name)
	d.ready = func() bool {
		if n := countHolders(sysfsPath); n > 0 {
			pkg.LogInfo(pkg.ComponentDisk, "device is held by another mapping",
				"disk", id, "holders", n)
			return false
		}
		return true
	}
	return d, nil
}
