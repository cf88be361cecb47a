// Package cleanup sweeps the bot's scratch directories, deleting entries
// matched by a user-supplied rule expression, with an optional cap on the
// total bytes the directories may occupy.
package cleanup

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentRoots bounds how many roots are scanned at once.
const maxConcurrentRoots = 4

// Options configures a sweep.
type Options struct {
	Roots         []string
	Rule          string
	MaxUsageBytes int64 // 0 disables the usage cap
	DryRun        bool
}

// Result summarizes a sweep.
type Result struct {
	Scanned    int
	Removed    int
	Evicted    int
	FreedBytes int64
}

// Sweeper deletes matching entries from the configured roots.
type Sweeper struct {
	opts   Options
	rule   *Rule
	logger zerolog.Logger

	now func() time.Time
}

// NewSweeper compiles the rule and returns a ready Sweeper.
func NewSweeper(opts Options, logger zerolog.Logger) (*Sweeper, error) {
	rule, err := CompileRule(opts.Rule)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		opts:   opts,
		rule:   rule,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Sweep scans the roots concurrently, removes rule matches, then runs the
// oldest-first eviction pass if the usage cap is exceeded. Missing roots
// are skipped.
func (s *Sweeper) Sweep(ctx context.Context) (*Result, error) {
	s.logger.Debug().Str("rule", s.rule.Expression()).Int("roots", len(s.opts.Roots)).Msg("Starting sweep")

	result := &Result{}
	var mu sync.Mutex
	var survivors []Entry

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRoots)

	for _, root := range s.opts.Roots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			kept, rootResult, err := s.sweepRoot(root)
			if err != nil {
				return err
			}

			mu.Lock()
			result.Scanned += rootResult.Scanned
			result.Removed += rootResult.Removed
			result.FreedBytes += rootResult.FreedBytes
			survivors = append(survivors, kept...)
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.enforceUsageCap(survivors, result); err != nil {
		return nil, err
	}

	return result, nil
}

// sweepRoot applies the rule to the top-level entries of one root.
func (s *Sweeper) sweepRoot(root string) ([]Entry, *Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug().Str("root", root).Msg("Cleanup root does not exist, skipping")
			return nil, &Result{}, nil
		}
		return nil, nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	result := &Result{}
	var kept []Entry

	for _, dirEntry := range entries {
		entry, err := s.describe(root, dirEntry)
		if err != nil {
			s.logger.Warn().Err(err).Str("entry", dirEntry.Name()).Msg("Failed to stat entry, skipping")
			continue
		}
		result.Scanned++

		matched, err := s.rule.Match(entry)
		if err != nil {
			return nil, nil, err
		}

		if !matched {
			kept = append(kept, entry)
			continue
		}

		if err := s.remove(entry); err != nil {
			s.logger.Warn().Err(err).Str("path", entry.Path).Msg("Failed to remove entry")
			kept = append(kept, entry)
			continue
		}
		result.Removed++
		result.FreedBytes += entry.Size
	}

	return kept, result, nil
}

// enforceUsageCap removes surviving entries oldest-first until the roots
// fit under the configured byte cap.
func (s *Sweeper) enforceUsageCap(survivors []Entry, result *Result) error {
	if s.opts.MaxUsageBytes <= 0 {
		return nil
	}

	var usage int64
	for _, entry := range survivors {
		usage += entry.Size
	}
	if usage <= s.opts.MaxUsageBytes {
		return nil
	}

	s.logger.Info().
		Int64("usage_bytes", usage).
		Int64("cap_bytes", s.opts.MaxUsageBytes).
		Msg("Disk usage over cap, evicting oldest entries")

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].Modified.Before(survivors[j].Modified)
	})

	for _, entry := range survivors {
		if usage <= s.opts.MaxUsageBytes {
			break
		}
		if err := s.remove(entry); err != nil {
			s.logger.Warn().Err(err).Str("path", entry.Path).Msg("Failed to evict entry")
			continue
		}
		usage -= entry.Size
		result.Evicted++
		result.FreedBytes += entry.Size
	}

	return nil
}

func (s *Sweeper) remove(entry Entry) error {
	if s.opts.DryRun {
		s.logger.Info().Str("path", entry.Path).Int64("size", entry.Size).Msg("[DRY RUN] Would remove")
		return nil
	}

	if err := os.RemoveAll(entry.Path); err != nil {
		return err
	}

	s.logger.Debug().Str("path", entry.Path).Int64("size", entry.Size).Msg("Removed")
	return nil
}

// describe builds the rule environment for one directory entry. Directory
// sizes are computed recursively so the usage cap sees real usage.
func (s *Sweeper) describe(root string, dirEntry os.DirEntry) (Entry, error) {
	info, err := dirEntry.Info()
	if err != nil {
		return Entry{}, err
	}

	path := filepath.Join(root, dirEntry.Name())
	size := info.Size()
	if info.IsDir() {
		size = treeSize(path)
	}

	return Entry{
		Name:     dirEntry.Name(),
		Path:     path,
		Ext:      filepath.Ext(dirEntry.Name()),
		Size:     size,
		AgeHours: s.now().Sub(info.ModTime()).Hours(),
		IsDir:    info.IsDir(),
		Modified: info.ModTime(),
	}, nil
}

// treeSize sums file sizes under path, best effort.
func treeSize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
