package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bkyle/usb-rw/pkg/disk"
	"github.com/bkyle/usb-rw/pkg/remount"
)

// EnvPath names the environment variable consulted when no --config flag is given.
const EnvPath = "USB_RW_CONFIG"

// Config holds every setting of a run. Flags override values loaded from file.
type Config struct {
	Disks     []string      `yaml:"disks"`
	Wait      bool          `yaml:"wait"`
	Monitor   bool          `yaml:"monitor"`
	DryRun    bool          `yaml:"dry_run"`
	Verify    bool          `yaml:"verify"`
	Interval  time.Duration `yaml:"interval"`
	Verbose   bool          `yaml:"verbose"`
	LogFormat string        `yaml:"log_format"`
	Diskutil  string        `yaml:"diskutil"`
	Mount     string        `yaml:"mount"`
}

func Default() Config {
	return Config{
		Verify:    true,
		Interval:  remount.DefaultInterval,
		LogFormat: "text",
		Diskutil:  disk.DefaultDiskutilPath,
		Mount:     disk.DefaultMountPath,
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if c.Interval < 0 {
		return fmt.Errorf("invalid interval %s: must not be negative", c.Interval)
	}
	return nil
}

func (c Config) RemountOptions() remount.Options {
	return remount.Options{
		Wait:     c.Wait,
		Interval: c.Interval,
		DryRun:   c.DryRun,
		Verify:   c.Verify,
	}
}
