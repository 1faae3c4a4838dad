//go:build linux

package disk

import (
	"os"
	"path/filepath"
	"testing"
)

// fakeSysfs builds a sysfs-like tree under a temp dir.
type fakeSysfs struct {
	t    *testing.T
	root string
}

func newFakeSysfs(t *testing.T) *fakeSysfs {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{"block", "dev", "devices"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &fakeSysfs{t: t, root: root}
}

func (f *fakeSysfs) write(path, content string) {
	f.t.Helper()
	full := filepath.Join(f.root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content+"\n"), 0o644); err != nil {
		f.t.Fatal(err)
	}
}

// addUSBDisk adds a block device behind a USB device with the given IDs.
func (f *fakeSysfs) addUSBDisk(name string, removable bool, sectors string, vid, pid string) {
	f.t.Helper()
	usbDev := filepath.Join("devices", "usb1", "1-1")
	f.write(filepath.Join(usbDev, "idVendor"), vid)
	f.write(filepath.Join(usbDev, "idProduct"), pid)
	scsiDev := filepath.Join(usbDev, "1-1:1.0", "host0", "target0:0:0", name+"-0:0:0:0")
	f.write(filepath.Join(scsiDev, "vendor"), "Samsung")
	f.write(filepath.Join(scsiDev, "model"), "Flash Drive FIT")

	rem := "0"
	if removable {
		rem = "1"
	}
	block := filepath.Join("block", name)
	f.write(filepath.Join(block, "removable"), rem)
	f.write(filepath.Join(block, "size"), sectors)
	if err := os.MkdirAll(filepath.Join(f.root, block, "holders"), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(f.root, scsiDev), filepath.Join(f.root, block, "device")); err != nil {
		f.t.Fatal(err)
	}
	f.write(filepath.Join("dev", name), "")
}

func (f *fakeSysfs) platform() *LinuxPlatform {
	return NewLinuxPlatform(filepath.Join(f.root, "block"), filepath.Join(f.root, "dev"))
}

func TestLinuxPlatform_Volumes(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBDisk("sdb", true, "62652416", "04e8", "61f5")
	fs.addUSBDisk("sda", false, "1000215216", "04e8", "61f5")
	fs.addUSBDisk("sdc", true, "0", "04e8", "61f5")
	fs.write(filepath.Join("block", "loop0", "removable"), "1")
	fs.write(filepath.Join("block", "loop0", "size"), "100")

	vols, err := fs.platform().Volumes()
	if err != nil {
		t.Fatalf("Volumes() error = %v", err)
	}
	if len(vols) != 1 {
		t.Fatalf("Volumes() = %d volumes, want 1: %+v", len(vols), vols)
	}

	v := vols[0]
	if v.ID != filepath.Join(fs.root, "dev", "sdb") || v.Name != "sdb" {
		t.Errorf("volume = %q (%q), want sdb", v.ID, v.Name)
	}
	if v.VendorID != 0x04e8 || v.ProductID != 0x61f5 {
		t.Errorf("USB IDs = %04x:%04x, want 04e8:61f5", v.VendorID, v.ProductID)
	}
	if v.Vendor != "Samsung" || v.Model != "Flash Drive FIT" {
		t.Errorf("vendor/model = %q/%q", v.Vendor, v.Model)
	}
	if v.Size != 62652416*512 {
		t.Errorf("Size = %d, want %d", v.Size, 62652416*512)
	}
}

func TestLinuxPlatform_VolumesMissingRoot(t *testing.T) {
	p := NewLinuxPlatform(filepath.Join(t.TempDir(), "nope"), "/dev")
	if _, err := p.Volumes(); err == nil {
		t.Error("Volumes() with missing sysfs root succeeded")
	}
}

func TestLinuxPlatform_OpenHolders(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBDisk("sdb", true, "2048", "04e8", "61f5")
	p := fs.platform()
	id := filepath.Join(fs.root, "dev", "sdb")

	d, err := p.Open(id)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()
	if !d.IsReadyForAuthentication() {
		t.Error("IsReadyForAuthentication() = false without holders")
	}

	fs.write(filepath.Join("block", "sdb", "holders", "dm-0"), "")
	if d.IsReadyForAuthentication() {
		t.Error("IsReadyForAuthentication() = true with a dm-crypt holder")
	}
}

func TestFind(t *testing.T) {
	fs := newFakeSysfs(t)
	fs.addUSBDisk("sdb", true, "2048", "04e8", "61f5")
	p := fs.platform()

	if _, ok, err := Find(p, filepath.Join(fs.root, "dev", "sdb")); err != nil || !ok {
		t.Errorf("Find(sdb) = %v, %v; want found", ok, err)
	}
	if _, ok, err := Find(p, "/dev/sdz"); err != nil || ok {
		t.Errorf("Find(sdz) = %v, %v; want not found", ok, err)
	}
}

func TestReadSysfsHexUint16(t *testing.T) {
	fs := newFakeSysfs(t)
	tests := []struct {
		content string
		want    uint16
		wantErr bool
	}{
		{"04e8", 0x04e8, false},
		{"0x61f5", 0x61f5, false},
		{"FFFF", 0xFFFF, false},
		{"10000", 0, true},
		{"zz", 0, true},
	}
	for _, tt := range tests {
		fs.write("attr", tt.content)
		got, err := readSysfsHexUint16(filepath.Join(fs.root, "attr"))
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readSysfsHexUint16(%q) = %#x, %v; want %#x, err=%v", tt.content, got, err, tt.want, tt.wantErr)
		}
	}
}
