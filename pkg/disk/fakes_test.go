package disk

import (
	"context"
	"errors"
	"io"
	"strings"
)

// fakeTool stands in for diskutil in tests.
type fakeTool struct {
	reports   map[string]string
	infoCalls []string

	inventory string
	listErr   error
	listCalls int

	activity    string
	activityErr error
	waitErr     error
	waitCalls   int

	remounted  []string
	remountErr error
}

func (f *fakeTool) Info(_ context.Context, id string) ([]byte, error) {
	f.infoCalls = append(f.infoCalls, id)
	report, ok := f.reports[id]
	if !ok {
		return nil, errors.New("exit status 1")
	}
	return []byte(report), nil
}

func (f *fakeTool) List(context.Context) ([]byte, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []byte(f.inventory), nil
}

func (f *fakeTool) Activity(context.Context) (io.ReadCloser, func() error, error) {
	if f.activityErr != nil {
		return nil, nil, f.activityErr
	}
	wait := func() error {
		f.waitCalls++
		return f.waitErr
	}
	return io.NopCloser(strings.NewReader(f.activity)), wait, nil
}

func (f *fakeTool) Remount(_ context.Context, devicePath string) error {
	f.remounted = append(f.remounted, devicePath)
	return f.remountErr
}
