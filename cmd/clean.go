package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruslanv/botstrap/cleanup"
)

var (
	cleanRule   string
	cleanDryRun bool
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Sweep the bot's scratch directories",
	Long: `Delete entries from the configured cleanup roots (temp and download
directories) that match the cleanup rule, then evict the oldest surviving
entries if the directories exceed the configured usage cap.

The rule is a boolean expression over each directory entry, for example:

  age_hours > 48
  ext == ".part" and not is_dir
  is_dir and age_hours > 24 and size > 1000000000`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	cleanCmd.Flags().StringVarP(&cleanRule, "rule", "r", "", "override the cleanup rule from config")
	cleanCmd.Flags().BoolVarP(&cleanDryRun, "dry-run", "d", false, "report what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	rule := cfg.Cleanup.Rule
	if cleanRule != "" {
		rule = cleanRule
	}

	roots := make([]string, 0, len(cfg.Cleanup.Roots))
	for _, root := range cfg.Cleanup.Roots {
		roots = append(roots, resolveWorkingPath(root))
	}

	sweeper, err := cleanup.NewSweeper(cleanup.Options{
		Roots:         roots,
		Rule:          rule,
		MaxUsageBytes: cfg.Cleanup.MaxUsageBytes,
		DryRun:        cleanDryRun,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("rule", rule).Strs("roots", roots).Msg("Sweeping scratch directories")

	result, err := sweeper.Sweep(cmd.Context())
	if err != nil {
		return err
	}

	verb := "Removed"
	if cleanDryRun {
		verb = "Would remove"
	}
	fmt.Printf("%s %d of %d entries (%s freed", verb, result.Removed+result.Evicted, result.Scanned, formatBytes(uint64(result.FreedBytes)))
	if result.Evicted > 0 {
		fmt.Printf(", %d evicted by the usage cap", result.Evicted)
	}
	fmt.Println(")")

	return nil
}
