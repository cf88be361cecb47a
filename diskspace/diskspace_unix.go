//go:build !windows

// Package diskspace reports free and total bytes for the filesystem
// containing a path.
package diskspace

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Usage returns free and total bytes for the filesystem containing path.
func Usage(path string) (free, total uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("failed to statfs %s: %w", path, err)
	}

	bsize := uint64(stat.Bsize)
	return stat.Bavail * bsize, stat.Blocks * bsize, nil
}
