//go:build linux

package disk

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// =============================================================================
// Block Device Information
// =============================================================================

// blockDeviceInfo holds information about a block device discovered via sysfs.
type blockDeviceInfo struct {
	name      string // Kernel name, e.g. "sdb" or "mmcblk0"
	sysfsPath string // Path in /sys/block
	removable bool   // "removable" attribute
	sectors   uint64 // "size" attribute in 512-byte units
	vendor    string // device/vendor
	model     string // device/model or device/name for MMC
	vendorID  uint16 // idVendor of the nearest USB ancestor
	productID uint16 // idProduct of the nearest USB ancestor
	holders   int    // Number of entries in holders/
}

// =============================================================================
// Sysfs Parsing
// =============================================================================

// scanBlockDevices scans sysfs for whole-disk block devices.
func scanBlockDevices(root string) ([]blockDeviceInfo, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var devices []blockDeviceInfo
	for _, entry := range entries {
		name := entry.Name()

		// Skip virtual devices that never carry a card.
		if strings.HasPrefix(name, "loop") || strings.HasPrefix(name, "ram") ||
			strings.HasPrefix(name, "dm-") || strings.HasPrefix(name, "zram") {
			continue
		}

		info, err := parseBlockDevice(filepath.Join(root, name))
		if err != nil {
			continue // Skip devices we can't parse
		}
		devices = append(devices, info)
	}

	return devices, nil
}

// parseBlockDevice parses block device information from sysfs.
func parseBlockDevice(sysfsPath string) (blockDeviceInfo, error) {
	info := blockDeviceInfo{
		name:      filepath.Base(sysfsPath),
		sysfsPath: sysfsPath,
	}

	removable, err := readSysfsUint(filepath.Join(sysfsPath, "removable"), 8)
	if err != nil {
		return info, err
	}
	info.removable = removable == 1

	sectors, err := readSysfsUint(filepath.Join(sysfsPath, "size"), 64)
	if err == nil {
		info.sectors = sectors
	}

	devicePath := filepath.Join(sysfsPath, "device")
	if s, err := readSysfsString(filepath.Join(devicePath, "vendor")); err == nil {
		info.vendor = s
	}
	if s, err := readSysfsString(filepath.Join(devicePath, "model")); err == nil {
		info.model = s
	} else if s, err := readSysfsString(filepath.Join(devicePath, "name")); err == nil {
		info.model = s
	}

	info.vendorID, info.productID = findUSBIDs(devicePath)
	info.holders = countHolders(sysfsPath)

	return info, nil
}

// findUSBIDs walks up from a block device's "device" link to the nearest
// ancestor carrying USB vendor and product IDs.
func findUSBIDs(devicePath string) (vendorID, productID uint16) {
	dir, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return 0, 0
	}
	for dir != "/" && dir != "." {
		vid, err := readSysfsHexUint16(filepath.Join(dir, "idVendor"))
		if err == nil {
			pid, _ := readSysfsHexUint16(filepath.Join(dir, "idProduct"))
			return vid, pid
		}
		dir = filepath.Dir(dir)
	}
	return 0, 0
}

// countHolders returns the number of devices stacked on top of a block
// device, such as dm-crypt mappings.
func countHolders(sysfsPath string) int {
	entries, err := os.ReadDir(filepath.Join(sysfsPath, "holders"))
	if err != nil {
		return 0
	}
	return len(entries)
}

// =============================================================================
// Sysfs Read Helpers
// =============================================================================

// readSysfsString reads a string from a sysfs attribute file.
func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysfsUint reads an unsigned decimal integer from a sysfs attribute file.
func readSysfsUint(path string, bitSize int) (uint64, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(s, 10, bitSize)
}

// readSysfsHexUint16 reads a hexadecimal uint16 from a sysfs attribute file.
func readSysfsHexUint16(path string) (uint16, error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, err
	}
	// Remove any "0x" prefix
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
