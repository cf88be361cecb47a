//go:build windows

// Package diskspace reports free and total bytes for the filesystem
// containing a path.
package diskspace

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Usage returns free and total bytes for the volume containing path.
func Usage(path string) (free, total uint64, err error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid path %s: %w", path, err)
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, 0, fmt.Errorf("failed to query disk space for %s: %w", path, err)
	}

	return freeBytesAvailable, totalBytes, nil
}
