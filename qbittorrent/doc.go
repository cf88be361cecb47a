// Package qbittorrent provides a reachability probe for the qBittorrent
// Web UI the bot depends on.
//
// This package wraps the autobrr/go-qbittorrent library. It deliberately
// does not manage torrents: the bot owns the torrent lifecycle, and the
// launcher only needs to answer the troubleshooting checklist before the
// bot starts — is qBittorrent running, is the Web UI enabled, and do the
// configured credentials work.
//
// # Usage
//
//	probe := qbittorrent.NewProbe(host, username, password, logger)
//	health, err := probe.Check(ctx)
//	if err != nil {
//	    // Web UI unreachable or credentials rejected
//	}
//	fmt.Println(health.AppVersion, health.APIVersion, health.TorrentCount)
package qbittorrent
