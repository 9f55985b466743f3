package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/bkyle/usb-rw/pkg/config"
	"github.com/bkyle/usb-rw/pkg/disk"
	"github.com/bkyle/usb-rw/pkg/remount"
	"github.com/bkyle/usb-rw/pkg/ui"
)

// ErrPrivilege is returned when the tool is not run as root.
var ErrPrivilege = errors.New("usb-rw must be run as root (try sudo)")

var (
	geteuid = unix.Geteuid
	runFn   = run
)

func newRootCmd() *cobra.Command {
	var (
		flagCfg    = config.Default()
		noVerify   bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "usb-rw [flags] [disk ...]",
		Short: "Remount read-only external USB volumes read-write",
		Long: `usb-rw finds external USB volumes that macOS mounted read-only and
remounts them read-write.

Disks given as arguments (identifiers such as disk4s1 or device paths
such as /dev/disk4s1) are examined instead of every disk the system
knows about. With --monitor, disks are examined as they are attached.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if geteuid() != 0 {
				return ErrPrivilege
			}

			cfg, err := resolveConfig(cmd, configPath, flagCfg, noVerify, args)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Verbose)
			tool := disk.NewDiskUtil(cfg.Diskutil, cfg.Mount)
			return runFn(cmd.Context(), cfg, tool, cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&flagCfg.Verbose, "verbose", "v", flagCfg.Verbose, "show every disk examined and a summary of each pass")
	flags.BoolVarP(&flagCfg.Wait, "wait", "w", flagCfg.Wait, "keep checking until a volume has been remounted")
	flags.BoolVarP(&flagCfg.Monitor, "monitor", "m", flagCfg.Monitor, "watch for newly attached disks")
	flags.BoolVarP(&flagCfg.DryRun, "dry-run", "n", flagCfg.DryRun, "report eligible volumes without remounting them")
	flags.DurationVarP(&flagCfg.Interval, "interval", "i", flagCfg.Interval, "pause between checks in wait mode")
	flags.BoolVar(&noVerify, "no-verify", false, "do not query a volume again after remounting it")
	flags.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "log format: text or json")
	flags.StringVar(&flagCfg.Diskutil, "diskutil", flagCfg.Diskutil, "path to diskutil")
	flags.StringVar(&flagCfg.Mount, "mount", flagCfg.Mount, "path to mount")
	flags.StringVarP(&configPath, "config", "c", os.Getenv(config.EnvPath), "YAML config file")

	return cmd
}

// resolveConfig layers defaults, the config file, changed flags and
// positional disks, in that order.
func resolveConfig(cmd *cobra.Command, path string, fromFlags config.Config, noVerify bool, args []string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("verbose") {
		cfg.Verbose = fromFlags.Verbose
	}
	if changed("wait") {
		cfg.Wait = fromFlags.Wait
	}
	if changed("monitor") {
		cfg.Monitor = fromFlags.Monitor
	}
	if changed("dry-run") {
		cfg.DryRun = fromFlags.DryRun
	}
	if changed("interval") {
		cfg.Interval = fromFlags.Interval
	}
	if changed("no-verify") {
		cfg.Verify = !noVerify
	}
	if changed("log-format") {
		cfg.LogFormat = fromFlags.LogFormat
	}
	if changed("diskutil") {
		cfg.Diskutil = fromFlags.Diskutil
	}
	if changed("mount") {
		cfg.Mount = fromFlags.Mount
	}
	if len(args) > 0 {
		cfg.Disks = args
	}

	return cfg, cfg.Validate()
}

func newLogger(w io.Writer, format string, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newEnumerator(cfg config.Config, tool disk.Tool, logger *slog.Logger) disk.Enumerator {
	switch {
	case len(cfg.Disks) > 0:
		if cfg.Monitor {
			logger.Warn("disks given on the command line, not monitoring")
		}
		return disk.NewListEnumerator(cfg.Disks)
	case cfg.Monitor:
		return disk.NewMonitorEnumerator(tool, logger)
	default:
		return disk.NewSnapshotEnumerator(tool, logger)
	}
}

func run(ctx context.Context, cfg config.Config, tool disk.Tool, out io.Writer, logger *slog.Logger) error {
	reporter := ui.NewReporter(out, cfg.Verbose)
	defer reporter.Close()

	runner := remount.NewRunner(tool, newEnumerator(cfg, tool, logger), cfg.RemountOptions(), reporter, logger)
	return runner.Run(ctx)
}
