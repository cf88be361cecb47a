package qbittorrent

import "errors"

// Common errors returned by the probe.
var (
	// ErrConnectionFailed is returned when the Web UI cannot be reached or
	// rejects the configured credentials.
	ErrConnectionFailed = errors.New("connection to qBittorrent failed")

	// ErrProbeFailed is returned when the Web UI accepted the login but a
	// follow-up query failed.
	ErrProbeFailed = errors.New("qBittorrent probe failed")
)
