package usbid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPaths lists the standard locations for the USB ID database.
var DefaultPaths = []string{
	"/usr/share/hwdata/usb.ids",
	"/var/lib/usbutils/usb.ids",
	"/usr/share/misc/usb.ids",
}

// Database caches vendor and product names from the USB ID database. It is
// loaded lazily on the first lookup.
type Database struct {
	vendors  map[uint16]string // VID -> vendor name
	products map[uint32]string // (VID<<16)|PID -> product name
	paths    []string
	once     sync.Once
	found    bool
}

// New creates a database that searches the default paths.
func New() *Database {
	return NewWithPaths(DefaultPaths)
}

// NewWithPaths creates a database that searches the specified paths in order.
func NewWithPaths(paths []string) *Database {
	return &Database{
		vendors:  make(map[uint16]string),
		products: make(map[uint32]string),
		paths:    paths,
	}
}

// Parse builds a database from r without consulting any path.
func Parse(r io.Reader) (*Database, error) {
	db := NewWithPaths(nil)
	var err error
	db.once.Do(func() {
		err = db.parse(r)
		db.found = err == nil
	})
	return db, err
}

// Load reads the first database file found. It reports whether one was
// found. Subsequent calls do nothing.
func (db *Database) Load() bool {
	db.once.Do(func() {
		for _, path := range db.paths {
			f, err := os.Open(path)
			if err != nil {
				continue
			}
			err = db.parse(f)
			f.Close()
			if err == nil {
				db.found = true
				return
			}
		}
	})
	return db.found
}

// parse reads the vendor and product sections of the usb.ids format.
// Vendor lines are "vvvv  Name"; product lines are "\tpppp  Name".
// Any other line ends the current vendor block.
func (db *Database) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var vid uint16
	inVendor := false

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if line[0] == '\t' {
			if !inVendor {
				continue
			}
			if id, name, ok := splitEntry(line[1:]); ok {
				db.products[uint32(vid)<<16|uint32(id)] = name
			}
			continue
		}

		id, name, ok := splitEntry(line)
		inVendor = ok
		if ok {
			vid = id
			db.vendors[vid] = name
		}
	}
	return scanner.Err()
}

// splitEntry parses "xxxx  Name".
func splitEntry(line string) (uint16, string, bool) {
	if len(line) < 6 || line[4] != ' ' {
		return 0, "", false
	}
	id, err := strconv.ParseUint(line[:4], 16, 16)
	if err != nil {
		return 0, "", false
	}
	name := strings.TrimLeft(line[5:], " ")
	if name == "" {
		return 0, "", false
	}
	return uint16(id), name, true
}

// Vendor returns the vendor name for vid, or "" if unknown.
func (db *Database) Vendor(vid uint16) string {
	db.Load()
	return db.vendors[vid]
}

// Product returns the product name for vid:pid, or "" if unknown.
func (db *Database) Product(vid, pid uint16) string {
	db.Load()
	return db.products[uint32(vid)<<16|uint32(pid)]
}

// Describe formats vid:pid with whatever names are known, e.g.
// "04e8:61f5 Samsung Electronics Co., Ltd Portable SSD T5".
func (db *Database) Describe(vid, pid uint16) string {
	s := fmt.Sprintf("%04x:%04x", vid, pid)
	if v := db.Vendor(vid); v != "" {
		s += " " + v
		if p := db.Product(vid, pid); p != "" {
			s += " " + p
		}
	}
	return s
}
