package remount

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/bkyle/usb-rw/pkg/disk"
)

func report(id string, external bool, protocol string, readOnly bool) string {
	var b strings.Builder
	b.WriteString("   Device Identifier:         " + id + "\n")
	b.WriteString("   Device Node:               /dev/" + id + "\n")
	b.WriteString("   Mounted:                   Yes\n")
	b.WriteString("   Protocol:                  " + protocol + "\n")
	if readOnly {
		b.WriteString("   Read-Only Volume:          Yes\n")
	} else {
		b.WriteString("   Read-Only Volume:          No\n")
	}
	if external {
		b.WriteString("   Device Location:           External\n")
	} else {
		b.WriteString("   Device Location:           Internal\n")
	}
	return b.String()
}

// fakeTool answers Info from canned reports keyed by identifier or device
// path. After a successful remount the device reports writable.
type fakeTool struct {
	reports     map[string]string
	remountErrs map[string]error
	remounted   []string
	infoCalls   []string
}

func newFakeTool(reports map[string]string) *fakeTool {
	f := &fakeTool{reports: make(map[string]string), remountErrs: make(map[string]error)}
	for id, r := range reports {
		f.reports[id] = r
		f.reports["/dev/"+id] = r
	}
	return f
}

func (f *fakeTool) Info(_ context.Context, id string) ([]byte, error) {
	f.infoCalls = append(f.infoCalls, id)
	r, ok := f.reports[id]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(r), nil
}

func (f *fakeTool) List(context.Context) ([]byte, error) {
	return nil, errors.New("not listed")
}

func (f *fakeTool) Activity(context.Context) (io.ReadCloser, func() error, error) {
	return nil, nil, errors.New("no activity")
}

func (f *fakeTool) Remount(_ context.Context, devicePath string) error {
	f.remounted = append(f.remounted, devicePath)
	if err := f.remountErrs[devicePath]; err != nil {
		return err
	}
	if r, ok := f.reports[devicePath]; ok {
		f.reports[devicePath] = strings.Replace(r, "Read-Only Volume:          Yes", "Read-Only Volume:          No", 1)
	}
	return nil
}

// scriptedEnumerator yields passes[i] on the i-th call to Disks and the
// last entry for every call after that.
type scriptedEnumerator struct {
	passes [][]string
	errs   []error
	calls  int
}

func (e *scriptedEnumerator) Disks(context.Context) iter.Seq2[string, error] {
	i := min(e.calls, len(e.passes)-1)
	e.calls++
	return func(yield func(string, error) bool) {
		if i < len(e.errs) && e.errs[i] != nil {
			yield("", e.errs[i])
			return
		}
		for _, id := range e.passes[i] {
			if !yield(id, nil) {
				return
			}
		}
	}
}

type recordingReporter struct {
	examined []disk.Descriptor
	results  []Result
	passes   []PassStats
	waits    int
}

func (r *recordingReporter) Examined(d disk.Descriptor, _ bool) { r.examined = append(r.examined, d) }
func (r *recordingReporter) Result(res Result)                  { r.results = append(r.results, res) }
func (r *recordingReporter) PassFinished(s PassStats)           { r.passes = append(r.passes, s) }
func (r *recordingReporter) Waiting(time.Duration)              { r.waits++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
