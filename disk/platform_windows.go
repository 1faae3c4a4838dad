//go:build windows

package disk

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ardnew/cardauth/auth"
	"github.com/ardnew/cardauth/pkg"
)

// Device I/O control codes not exported by x/sys/windows.
const (
	ioctlStorageGetDeviceNumber = 0x002D1080
	fsctlLockVolume             = 0x00090018
	fsctlUnlockVolume           = 0x0009001C
)

// storageDeviceNumber mirrors STORAGE_DEVICE_NUMBER.
type storageDeviceNumber struct {
	DeviceType      uint32
	DeviceNumber    uint32
	PartitionNumber uint32
}

// WindowsPlatform lists removable drive letters and opens the physical
// drive behind each.
type WindowsPlatform struct{}

// Default returns the disk platform of the host operating system.
func Default() (Platform, error) {
	return WindowsPlatform{}, nil
}

// Volumes lists removable drives, identified by drive letter ("E:").
func (WindowsPlatform) Volumes() ([]Volume, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}

	var vols []Volume
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		root := string(rune('A'+i)) + ":"
		rootPath, err := windows.UTF16PtrFromString(root + `\`)
		if err != nil {
			continue
		}
		if windows.GetDriveType(rootPath) != windows.DRIVE_REMOVABLE {
			continue
		}
		vols = append(vols, Volume{ID: root, Name: root})
	}
	return vols, nil
}

// Open opens the physical drive behind the volume id.
func (WindowsPlatform) Open(id string) (Disk, error) {
	return openVolumeDisk(id)
}

// volumeDisk reads the physical drive holding a volume. The volume handle
// is kept open for locking.
type volumeDisk struct {
	root   string
	volume windows.Handle
	drive  windows.Handle
	closed bool
	mutex  sync.Mutex
}

func openVolumeDisk(id string) (*volumeDisk, error) {
	root := strings.TrimRight(filepath.VolumeName(id), `\`)
	if root == "" {
		return nil, fmt.Errorf("%w: %q is not a drive", pkg.ErrInvalidParameter, id)
	}

	volume, err := openDevice(`\\.\` + root)
	if err != nil {
		return nil, fmt.Errorf("open volume %s: %w", root, err)
	}

	var num storageDeviceNumber
	var returned uint32
	err = windows.DeviceIoControl(volume, ioctlStorageGetDeviceNumber, nil, 0,
		(*byte)(unsafe.Pointer(&num)), uint32(unsafe.Sizeof(num)), &returned, nil)
	if err != nil {
		windows.CloseHandle(volume)
		return nil, fmt.Errorf("query device number of %s: %w", root, err)
	}

	drive, err := openDevice(fmt.Sprintf(`\\.\PhysicalDrive%d`, num.DeviceNumber))
	if err != nil {
		windows.CloseHandle(volume)
		return nil, fmt.Errorf("open physical drive %d: %w", num.DeviceNumber, err)
	}

	pkg.LogDebug(pkg.ComponentDisk, "opened volume", "volume", root, "drive", num.DeviceNumber)
	return &volumeDisk{root: root, volume: volume, drive: drive}, nil
}

func openDevice(path string) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return windows.InvalidHandle, err
	}
	return windows.CreateFile(p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil, windows.OPEN_EXISTING, 0, 0)
}

func (d *volumeDisk) Name() string {
	return d.root
}

func (d *volumeDisk) SeekSector(sector int64) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return pkg.ErrDiskClosed
	}
	_, err := windows.Seek(d.drive, sector*auth.SectorSize, 0)
	return err
}

func (d *volumeDisk) ReadSectors(n int) ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return nil, pkg.ErrDiskClosed
	}
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n*auth.SectorSize)
	var done uint32
	if err := windows.ReadFile(d.drive, buf, &done, nil); err != nil {
		return nil, err
	}
	return buf[:done], nil
}

func (d *volumeDisk) Lock() bool {
	return d.control(fsctlLockVolume)
}

func (d *volumeDisk) Unlock() bool {
	return d.control(fsctlUnlockVolume)
}

func (d *volumeDisk) control(code uint32) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return false
	}
	var returned uint32
	if err := windows.DeviceIoControl(d.volume, code, nil, 0, nil, 0, &returned, nil); err != nil {
		pkg.LogWarn(pkg.ComponentDisk, "volume control failed", "volume", d.root, "code", code, "error", err)
		return false
	}
	return true
}

// IsReadyForAuthentication reports whether the volume is still reachable.
// A volume whose file system cannot be queried, such as a locked
// BitLocker volume, is not ready.
func (d *volumeDisk) IsReadyForAuthentication() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return false
	}
	rootPath, err := windows.UTF16PtrFromString(d.root + `\`)
	if err != nil {
		return false
	}
	fsName := make([]uint16, windows.MAX_PATH+1)
	err = windows.GetVolumeInformation(rootPath, nil, 0, nil, nil, nil, &fsName[0], uint32(len(fsName)))
	if err != nil {
		pkg.LogInfo(pkg.ComponentDisk, "volume information unavailable", "volume", d.root, "error", err)
		return false
	}
	return true
}

func (d *volumeDisk) Close() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := windows.CloseHandle(d.drive)
	if cerr := windows.CloseHandle(d.volume); err == nil {
		err = cerr
	}
	return err
}
