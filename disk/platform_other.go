//go:build !linux && !windows

package disk

import "github.com/ardnew/cardauth/pkg"

// Default returns the disk platform of the host operating system.
func Default() (Platform, error) {
	return nil, pkg.ErrUnsupportedPlatform
}
