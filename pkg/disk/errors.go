package disk

import "errors"

var (
	// ErrQuery indicates a diskutil invocation failed or could not start.
	ErrQuery = errors.New("disk query failed")

	// ErrParse indicates the disk inventory was malformed.
	ErrParse = errors.New("disk inventory malformed")

	// ErrRemount indicates the remount command exited non-zero.
	ErrRemount = errors.New("remount failed")
)
