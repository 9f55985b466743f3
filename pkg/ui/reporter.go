package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"

	"github.com/bkyle/usb-rw/pkg/disk"
	"github.com/bkyle/usb-rw/pkg/remount"
)

// Reporter prints run progress. Examined disks and pass summaries are only
// shown when verbose is set. On a terminal the wait state is kept on a single
// refreshing status line.
type Reporter struct {
	out     io.Writer
	verbose bool
	status  *uilive.Writer

	headerShown bool
	passes      int
	waitingFor  time.Time
}

func NewReporter(out io.Writer, verbose bool) *Reporter {
	r := &Reporter{out: out, verbose: verbose}
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		r.status = uilive.New()
		r.status.Out = out
	}
	return r
}

// writer returns where permanent lines go, around the status line if one is active.
func (r *Reporter) writer() io.Writer {
	if r.status != nil && !r.waitingFor.IsZero() {
		return r.status.Bypass()
	}
	return r.out
}

func (r *Reporter) Examined(d disk.Descriptor, eligible bool) {
	if !r.verbose {
		return
	}
	w := r.writer()
	if !r.headerShown {
		fmt.Fprintln(w, Header())
		r.headerShown = true
	}
	fmt.Fprintln(w, Row(d, eligible))
}

func (r *Reporter) Result(res remount.Result) {
	fmt.Fprintln(r.writer(), ResultLine(res))
}

func (r *Reporter) PassFinished(s remount.PassStats) {
	r.passes = s.Number
	r.headerShown = false
	if r.verbose {
		fmt.Fprintln(r.writer(), Summary(s))
	}
}

func (r *Reporter) Waiting(next time.Duration) {
	if r.status == nil {
		if r.verbose {
			fmt.Fprintln(r.out, InfoStyle.Render(fmt.Sprintf("⏳ No read-only USB volume remounted, checking again in %s", next)))
		}
		return
	}
	if r.waitingFor.IsZero() {
		r.waitingFor = time.Now()
		r.status.Start()
	}
	fmt.Fprintln(r.status, InfoStyle.Render(fmt.Sprintf("⏳ Waiting for a read-only USB volume (pass %d, %s elapsed)",
		r.passes, time.Since(r.waitingFor).Round(time.Second))))
}

// Close stops the status line, if any.
func (r *Reporter) Close() {
	if r.status != nil && !r.waitingFor.IsZero() {
		r.status.Stop()
		r.waitingFor = time.Time{}
	}
}
