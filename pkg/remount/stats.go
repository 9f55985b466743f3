package remount

import (
	"time"

	"github.com/bkyle/usb-rw/pkg/disk"
)

// Result is the outcome of handling one eligible disk.
type Result struct {
	Disk disk.Descriptor
	Err  error
	// DryRun is set when the remount command was not invoked.
	DryRun bool
	// Verified is set when the disk was described again after remounting,
	// Writable holds what that description reported.
	Verified bool
	Writable bool
}

func (r Result) OK() bool {
	return r.Err == nil
}

// PassStats holds counters for one enumeration pass.
type PassStats struct {
	ID        string
	Number    int
	Examined  int
	Eligible  int
	Remounted int
	Failed    int
	Skipped   int // eligible but already remounted earlier in the run
	Started   time.Time
	Finished  time.Time
}

func (s PassStats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

func (s *PassStats) record(r Result) {
	switch {
	case r.DryRun:
	case r.OK():
		s.Remounted++
	default:
		s.Failed++
	}
}
