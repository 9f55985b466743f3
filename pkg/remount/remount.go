package remount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bkyle/usb-rw/pkg/disk"
)

// DefaultInterval is the pause between passes in wait mode.
const DefaultInterval = 2 * time.Second

// Options control how the Runner loops and acts on eligible disks.
type Options struct {
	// Wait repeats passes until one of them remounts a disk.
	Wait     bool
	Interval time.Duration
	DryRun   bool
	// Verify describes a disk again after remounting it.
	Verify bool
}

// Reporter receives progress for display. All methods are called from the
// goroutine running Run.
type Reporter interface {
	Examined(d disk.Descriptor, eligible bool)
	Result(r Result)
	PassFinished(s PassStats)
	Waiting(next time.Duration)
}

// Eligible reports whether d is an external USB volume mounted read-only.
func Eligible(d disk.Descriptor) bool {
	return ineligibleReason(d) == ""
}

func ineligibleReason(d disk.Descriptor) string {
	switch {
	case !d.External:
		return "not external"
	case d.Protocol != "USB":
		return fmt.Sprintf("protocol %q", d.Protocol)
	case !d.ReadOnly:
		return "not read-only"
	default:
		return ""
	}
}

// Runner drives enumeration, description and remounting.
type Runner struct {
	tool     disk.Tool
	builder  *disk.Builder
	source   disk.Enumerator
	opts     Options
	reporter Reporter
	logger   *slog.Logger

	passes    int
	remounted map[string]bool
}

func NewRunner(tool disk.Tool, source disk.Enumerator, opts Options, reporter Reporter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}
	return &Runner{
		tool:      tool,
		builder:   disk.NewBuilder(tool, logger),
		source:    source,
		opts:      opts,
		reporter:  reporter,
		logger:    logger,
		remounted: make(map[string]bool),
	}
}

// Run performs one pass, or in wait mode repeats passes until a disk has
// been remounted. A failed disk query ends the run with an error wrapping
// disk.ErrQuery; remount failures are reported per disk and do not.
func (r *Runner) Run(ctx context.Context) error {
	for {
		stats, err := r.Pass(ctx)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if !r.opts.Wait || r.satisfied(stats) {
			return nil
		}

		r.reporter.Waiting(r.opts.Interval)
		if err := sleep(ctx, r.opts.Interval); err != nil {
			return err
		}
	}
}

func (r *Runner) satisfied(s PassStats) bool {
	if r.opts.DryRun {
		return s.Eligible > 0
	}
	return s.Remounted > 0
}

// Pass enumerates disks once and handles every eligible one.
func (r *Runner) Pass(ctx context.Context) (PassStats, error) {
	r.passes++
	stats := PassStats{
		ID:      uuid.NewString(),
		Number:  r.passes,
		Started: time.Now(),
	}
	logger := r.logger.With("pass", stats.ID)
	logger.Debug("pass started", "number", stats.Number)

	for id, err := range r.source.Disks(ctx) {
		if err != nil {
			if errors.Is(err, disk.ErrParse) {
				logger.Warn("disk inventory unusable, ending pass", "error", err)
				break
			}
			return stats, err
		}

		stats.Examined++
		d, err := r.builder.Describe(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return stats, ctxErr
			}
			return stats, err
		}

		if reason := ineligibleReason(d); reason != "" {
			logger.Debug("skipping disk", "disk", id, "reason", reason)
			r.reporter.Examined(d, false)
			continue
		}
		r.reporter.Examined(d, true)
		stats.Eligible++

		if r.remounted[d.Target()] {
			logger.Debug("disk already remounted in this run", "disk", id)
			stats.Skipped++
			continue
		}

		res := r.handle(ctx, d, logger)
		stats.record(res)
		r.reporter.Result(res)
	}

	stats.Finished = time.Now()
	logger.Debug("pass finished",
		"examined", stats.Examined,
		"eligible", stats.Eligible,
		"remounted", stats.Remounted,
		"failed", stats.Failed,
		"duration", stats.Duration(),
	)
	r.reporter.PassFinished(stats)
	return stats, nil
}

func (r *Runner) handle(ctx context.Context, d disk.Descriptor, logger *slog.Logger) Result {
	res := Result{Disk: d}

	if d.DevicePath == "" {
		res.Err = fmt.Errorf("%w: %s has no device node", disk.ErrRemount, d.Identifier)
		logger.Error("cannot remount disk", "disk", d.Identifier, "error", res.Err)
		return res
	}

	if r.opts.DryRun {
		res.DryRun = true
		logger.Info("would remount disk", "device", d.DevicePath)
		return res
	}

	if err := r.tool.Remount(ctx, d.DevicePath); err != nil {
		res.Err = fmt.Errorf("%w: %s: %w", disk.ErrRemount, d.DevicePath, err)
		logger.Error("remount failed", "device", d.DevicePath, "error", err)
		return res
	}
	r.remounted[d.Target()] = true
	logger.Info("remounted disk read-write", "device", d.DevicePath)

	if r.opts.Verify {
		r.verify(ctx, &res, logger)
	}
	return res
}

func (r *Runner) verify(ctx context.Context, res *Result, logger *slog.Logger) {
	after, err := r.builder.Describe(ctx, res.Disk.DevicePath)
	if err != nil {
		logger.Warn("could not verify remount", "device", res.Disk.DevicePath, "error", err)
		return
	}
	res.Verified = true
	res.Writable = !after.ReadOnly
	if after.ReadOnly {
		logger.Warn("volume still reports read-only after remount", "device", res.Disk.DevicePath)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopReporter struct{}

func (nopReporter) Examined(disk.Descriptor, bool) {}
func (nopReporter) Result(Result)                  {}
func (nopReporter) PassFinished(PassStats)         {}
func (nopReporter) Waiting(time.Duration)          {}
