package qbittorrent

import (
	"context"
	"fmt"

	"github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog"
)

// Probe checks that the qBittorrent Web UI is reachable with the
// configured credentials.
type Probe struct {
	client *qbittorrent.Client
	host   string
	logger zerolog.Logger
}

// Health describes a reachable qBittorrent instance.
type Health struct {
	AppVersion   string
	APIVersion   string
	TorrentCount int
}

// NewProbe creates a probe for the given Web UI. No connection is made
// until Check is called.
func NewProbe(host, username, password string, logger zerolog.Logger) *Probe {
	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:     host,
		Username: username,
		Password: password,
	})

	return &Probe{
		client: client,
		host:   host,
		logger: logger,
	}
}

// Host returns the Web UI address the probe targets.
func (p *Probe) Host() string {
	return p.host
}

// Check logs in and gathers version information and the torrent count as a
// liveness signal.
func (p *Probe) Check(ctx context.Context) (*Health, error) {
	if err := p.client.LoginCtx(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	health := &Health{}

	appVersion, err := p.client.GetAppVersionCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: app version: %v", ErrProbeFailed, err)
	}
	health.AppVersion = appVersion

	apiVersion, err := p.client.GetWebAPIVersionCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: web api version: %v", ErrProbeFailed, err)
	}
	health.APIVersion = apiVersion

	torrents, err := p.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: torrent list: %v", ErrProbeFailed, err)
	}
	health.TorrentCount = len(torrents)

	p.logger.Debug().
		Str("app_version", health.AppVersion).
		Str("api_version", health.APIVersion).
		Int("torrents", health.TorrentCount).
		Msg("qBittorrent Web UI reachable")

	return health, nil
}
