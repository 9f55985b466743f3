package disk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"regexp"
	"slices"

	"howett.net/plist"
)

// inventoryKey names the array of every disk identifier in `diskutil list -plist`.
const inventoryKey = "AllDisks"

var diskAppearedRe = regexp.MustCompile(`\*\*\*DiskAppeared \('([^']+)'`)

// ListEnumerator yields a fixed list of identifiers or device paths.
// Every call to Disks yields the whole list again.
type ListEnumerator struct {
	ids []string
}

func NewListEnumerator(ids []string) *ListEnumerator {
	return &ListEnumerator{ids: slices.Clone(ids)}
}

func (e *ListEnumerator) Disks(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, id := range e.ids {
			if ctx.Err() != nil {
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// SnapshotEnumerator yields every disk known to the host at the time
// Disks is called.
type SnapshotEnumerator struct {
	tool   Tool
	logger *slog.Logger
}

func NewSnapshotEnumerator(tool Tool, logger *slog.Logger) *SnapshotEnumerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotEnumerator{tool: tool, logger: logger}
}

// Disks lists the inventory when the returned sequence is first ranged over.
// The sequence is single use; ranging it again yields nothing.
func (e *SnapshotEnumerator) Disks(ctx context.Context) iter.Seq2[string, error] {
	consumed := false
	return func(yield func(string, error) bool) {
		if consumed {
			return
		}
		consumed = true

		out, err := e.tool.List(ctx)
		if err != nil {
			yield("", fmt.Errorf("%w: list disks: %w", ErrQuery, err))
			return
		}

		ids, err := ParseInventory(out)
		if err != nil {
			yield("", err)
			return
		}
		e.logger.Debug("listed disks", "count", len(ids))

		for _, id := range ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

// ParseInventory returns the string entries of the AllDisks array of a
// property list, in document order. Entries that are not strings are skipped.
func ParseInventory(data []byte) ([]string, error) {
	var root map[string]any
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	raw, ok := root[inventoryKey]
	if !ok {
		return nil, fmt.Errorf("%w: no %s key", ErrParse, inventoryKey)
	}
	entries, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, not an array", ErrParse, inventoryKey, raw)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if id, ok := entry.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// MonitorEnumerator yields identifiers of disks as diskutil reports them
// appearing. The sequence only ends when ctx is cancelled or the activity
// process exits.
type MonitorEnumerator struct {
	tool   Tool
	logger *slog.Logger
}

func NewMonitorEnumerator(tool Tool, logger *slog.Logger) *MonitorEnumerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorEnumerator{tool: tool, logger: logger}
}

func (e *MonitorEnumerator) Disks(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, wait, err := e.tool.Activity(watchCtx)
		if err != nil {
			yield("", fmt.Errorf("%w: disk activity: %w", ErrQuery, err))
			return
		}
		e.logger.Debug("watching disk activity")

		scanner := bufio.NewScanner(stream)
		for scanner.Scan() {
			id, ok := ParseActivity(scanner.Text())
			if !ok {
				continue
			}
			e.logger.Debug("disk appeared", "disk", id)
			if !yield(id, nil) {
				cancel()
				_ = wait()
				return
			}
		}

		scanErr := scanner.Err()
		waitErr := wait()
		if ctx.Err() != nil {
			return
		}
		if err := errors.Join(scanErr, waitErr); err != nil {
			yield("", fmt.Errorf("%w: disk activity: %w", ErrQuery, err))
		}
	}
}

// ParseActivity extracts the identifier from a `***DiskAppeared ('<id>'` line.
func ParseActivity(line string) (string, bool) {
	m := diskAppearedRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
