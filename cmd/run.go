package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ruslanv/botstrap/launcher"
)

var (
	skipInstall  bool
	requireToken bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Install dependencies and start the bot",
	Long: `Run the full launch sequence: resolve the Python runtime, check it
against the supported version range, install the dependencies declared in
the manifest, load the environment overlay file, verify the bot token, and
start the bot.

The command blocks until the bot exits and exits with the bot's own exit
code. Interrupt and termination signals are forwarded to the bot.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "skip dependency installation")
	runCmd.Flags().BoolVar(&requireToken, "require-token", false, "fail instead of warning when the bot token is unset")
}

func runRun(cmd *cobra.Command, args []string) error {
	opts := launcherOptions()
	if cmd.Flags().Changed("skip-install") {
		opts.SkipInstall = skipInstall
	}
	if cmd.Flags().Changed("require-token") {
		opts.RequireToken = requireToken
	}

	l := launcher.New(opts, logger)

	code, err := l.Run(cmd.Context())
	if err != nil {
		return err
	}

	if code != 0 {
		logger.Warn().Int("exit_code", code).Msg("Bot exited with a non-zero status")
		os.Exit(code)
	}

	return nil
}

// launcherOptions maps the loaded configuration onto launcher options.
func launcherOptions() launcher.Options {
	return launcher.Options{
		Entrypoint:   cfg.Launcher.Entrypoint,
		WorkingDir:   cfg.Launcher.WorkingDir,
		Interpreter:  cfg.Launcher.Interpreter,
		Manifest:     cfg.Launcher.Manifest,
		EnvFile:      cfg.Launcher.EnvFile,
		SkipInstall:  cfg.Launcher.SkipInstall,
		PythonRange:  cfg.Launcher.PythonRange,
		TokenVar:     cfg.Bot.TokenVar,
		RequireToken: cfg.Bot.RequireToken,
	}
}
