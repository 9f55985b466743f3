package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	DefaultDiskutilPath = "/usr/sbin/diskutil"
	DefaultMountPath    = "/sbin/mount"
)

var _ Tool = (*DiskUtil)(nil)

// DiskUtil runs the macOS disk utilities as child processes.
type DiskUtil struct {
	DiskutilPath string
	MountPath    string
}

func NewDiskUtil(diskutilPath, mountPath string) *DiskUtil {
	if diskutilPath == "" {
		diskutilPath = DefaultDiskutilPath
	}
	if mountPath == "" {
		mountPath = DefaultMountPath
	}
	return &DiskUtil{DiskutilPath: diskutilPath, MountPath: mountPath}
}

func (u *DiskUtil) Info(ctx context.Context, id string) ([]byte, error) {
	return output(exec.CommandContext(ctx, u.DiskutilPath, "info", id))
}

func (u *DiskUtil) List(ctx context.Context) ([]byte, error) {
	return output(exec.CommandContext(ctx, u.DiskutilPath, "list", "-plist"))
}

func (u *DiskUtil) Activity(ctx context.Context) (io.ReadCloser, func() error, error) {
	cmd := exec.CommandContext(ctx, u.DiskutilPath, "activity")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("start %s activity: %w", u.DiskutilPath, err)
	}
	return stdout, cmd.Wait, nil
}

// Remount updates the existing mount of devicePath to read-write.
func (u *DiskUtil) Remount(ctx context.Context, devicePath string) error {
	cmd := exec.CommandContext(ctx, u.MountPath, "-u", "-w", devicePath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}

// output runs cmd and folds its stderr into the returned error.
func output(cmd *exec.Cmd) ([]byte, error) {
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return nil, fmt.Errorf("%s %s: %s: %w", cmd.Path, strings.Join(cmd.Args[1:], " "), msg, err)
			}
		}
		return nil, fmt.Errorf("%s %s: %w", cmd.Path, strings.Join(cmd.Args[1:], " "), err)
	}
	return out, nil
}
