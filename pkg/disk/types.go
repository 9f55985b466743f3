package disk

import (
	"context"
	"io"
	"iter"
)

// Descriptor is a point-in-time snapshot of a disk as reported by diskutil.
// Empty strings mean the attribute was not present in the report.
type Descriptor struct {
	Identifier string
	DevicePath string
	External   bool
	Protocol   string
	Mounted    bool
	ReadOnly   bool
}

// Target returns the path used to address the disk, preferring the device node.
func (d Descriptor) Target() string {
	if d.DevicePath != "" {
		return d.DevicePath
	}
	return d.Identifier
}

// Tool is the narrow view of the host disk utility this package needs.
// Implementations return plain errors; callers classify them.
type Tool interface {
	// Info returns the free-text report for one disk identifier or device path.
	Info(ctx context.Context, id string) ([]byte, error)
	// List returns the property-list inventory of all disks.
	List(ctx context.Context) ([]byte, error)
	// Activity starts the disk activity stream. wait reports how the
	// process ended and must be called once the stream is no longer read.
	Activity(ctx context.Context) (stream io.ReadCloser, wait func() error, err error)
	// Remount remounts the volume at devicePath read-write.
	Remount(ctx context.Context, devicePath string) error
}

// Enumerator produces disk identifiers to examine.
type Enumerator interface {
	Disks(ctx context.Context) iter.Seq2[string, error]
}
