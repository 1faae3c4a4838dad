// Package usbid looks up USB vendor and product names in the usb.ids
// database shipped with most Linux distributions.
//
// It annotates device listings with the USB bridge behind a removable
// block device:
//
//	db := usbid.New()
//	fmt.Println(db.Describe(0x04e8, 0x61f5))
//
// The database is loaded on first use from the first of [DefaultPaths]
// that exists. When none does, lookups return empty strings and Describe
// falls back to the numeric IDs. Lookups are safe for concurrent use.
package usbid
