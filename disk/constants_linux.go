//go:build linux

package disk

// SysfsBlockPath is the base path for block devices in sysfs.
const SysfsBlockPath = "/sys/block"

// DevPath is the base path for block device nodes.
const DevPath = "/dev"

// sysfsSectorSize is the unit of the sysfs "size" attribute, independent of
// the device's logical block size.
const sysfsSectorSize = 512
