package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ruslanv/botstrap/diskspace"
	"github.com/ruslanv/botstrap/envfile"
	"github.com/ruslanv/botstrap/pyruntime"
	"github.com/ruslanv/botstrap/qbittorrent"
)

// doctorConcurrency bounds how many checks run at once.
const doctorConcurrency = 4

// checkResult is the outcome of one doctor check.
type checkResult struct {
	name   string
	ok     bool
	detail string
}

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check every launch precondition and report what is broken",
	Long: `Run the troubleshooting checklist without starting the bot:

- Python runtime present and inside the supported version range
- dependency manifest present
- environment overlay file well-formed
- bot token set
- qBittorrent Web UI reachable with the configured credentials (if enabled)
- free disk space in the working directory`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	checks := []func(context.Context) checkResult{
		checkRuntime,
		checkManifest,
		checkOverlay,
		checkToken,
		checkDiskSpace,
	}
	if cfg.Qbittorrent.Enabled {
		checks = append(checks, checkQbittorrent)
	}

	results := make([]checkResult, len(checks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(doctorConcurrency)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check(ctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println(strings.Repeat("-", 72))
	failures := 0
	for _, result := range results {
		mark := "✓"
		if !result.ok {
			mark = "✗"
			failures++
		}
		fmt.Printf("%s %-22s %s\n", mark, result.name, result.detail)
	}
	fmt.Println(strings.Repeat("-", 72))

	if failures > 0 {
		return fmt.Errorf("%d of %d checks failed", failures, len(results))
	}

	fmt.Println("All checks passed. The bot is ready to launch.")
	return nil
}

func checkRuntime(ctx context.Context) checkResult {
	result := checkResult{name: "python runtime"}

	path, err := pyruntime.Resolve(cfg.Launcher.Interpreter)
	if err != nil {
		result.detail = err.Error()
		return result
	}

	interpreter, err := pyruntime.Probe(ctx, path)
	if err != nil {
		result.detail = fmt.Sprintf("%s (version probe failed: %v)", path, err)
		return result
	}

	if err := pyruntime.CheckRange(interpreter.Version, cfg.Launcher.PythonRange); err != nil {
		result.detail = err.Error()
		return result
	}

	result.ok = true
	result.detail = fmt.Sprintf("%s (%s)", path, interpreter.Version)
	return result
}

func checkManifest(ctx context.Context) checkResult {
	result := checkResult{name: "dependency manifest"}

	path := resolveWorkingPath(cfg.Launcher.Manifest)
	if _, err := os.Stat(path); err != nil {
		result.detail = fmt.Sprintf("%s not found", path)
		return result
	}

	result.ok = true
	result.detail = path
	return result
}

func checkOverlay(ctx context.Context) checkResult {
	result := checkResult{name: "environment overlay"}

	if cfg.Launcher.EnvFile == "" {
		result.ok = true
		result.detail = "not configured"
		return result
	}

	path := resolveWorkingPath(cfg.Launcher.EnvFile)
	if _, err := os.Stat(path); err != nil {
		// The overlay file is optional.
		result.ok = true
		result.detail = fmt.Sprintf("%s absent (optional)", path)
		return result
	}

	overlay, err := envfile.Load(path)
	if err != nil {
		result.detail = err.Error()
		return result
	}

	result.ok = true
	result.detail = fmt.Sprintf("%s (%d variables)", path, overlay.Len())
	return result
}

func checkToken(ctx context.Context) checkResult {
	result := checkResult{name: "bot token"}

	if value := os.Getenv(cfg.Bot.TokenVar); value != "" {
		result.ok = true
		result.detail = fmt.Sprintf("%s set in process environment", cfg.Bot.TokenVar)
		return result
	}

	if cfg.Launcher.EnvFile != "" {
		path := resolveWorkingPath(cfg.Launcher.EnvFile)
		if overlay, err := envfile.Load(path); err == nil {
			if value, ok := overlay.Get(cfg.Bot.TokenVar); ok && value != "" {
				result.ok = true
				result.detail = fmt.Sprintf("%s set in %s", cfg.Bot.TokenVar, path)
				return result
			}
		}
	}

	result.detail = fmt.Sprintf("%s is not set", cfg.Bot.TokenVar)
	return result
}

func checkDiskSpace(ctx context.Context) checkResult {
	result := checkResult{name: "disk space"}

	free, total, err := diskspace.Usage(cfg.Launcher.WorkingDir)
	if err != nil {
		result.detail = err.Error()
		return result
	}

	result.ok = true
	result.detail = fmt.Sprintf("%s free of %s", formatBytes(free), formatBytes(total))
	return result
}

func checkQbittorrent(ctx context.Context) checkResult {
	result := checkResult{name: "qbittorrent web ui"}

	probe := qbittorrent.NewProbe(cfg.Qbittorrent.Host, cfg.Qbittorrent.Username, cfg.Qbittorrent.Password, logger)
	health, err := probe.Check(ctx)
	if err != nil {
		result.detail = fmt.Sprintf("%s: %v", probe.Host(), err)
		return result
	}

	result.ok = true
	result.detail = fmt.Sprintf("%s (qBittorrent %s, API %s, %d torrents)",
		probe.Host(), health.AppVersion, health.APIVersion, health.TorrentCount)
	return result
}

func resolveWorkingPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.Launcher.WorkingDir, path)
}

// formatBytes renders a byte count in binary units.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
