package disk

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

var (
	identifierRe = regexp.MustCompile(`^\s*Device Identifier:(.*)$`)
	deviceNodeRe = regexp.MustCompile(`^\s*Device Node:(.*)$`)
	protocolRe   = regexp.MustCompile(`^\s*Protocol:(.*)$`)
	externalRe   = regexp.MustCompile(`^\s*Device Location:\s*External\s*$`)
	mountedRe    = regexp.MustCompile(`^\s*Mounted:\s*Yes\s*$`)
	readOnlyRe   = regexp.MustCompile(`^\s*Read-Only Volume:\s*Yes\s*$`)
)

// ParseInfo extracts a Descriptor from the text printed by `diskutil info`.
// Lines that do not match a known field are ignored and missing fields keep
// their zero value.
func ParseInfo(report string) Descriptor {
	var d Descriptor

	scanner := bufio.NewScanner(strings.NewReader(report))
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case d.Identifier == "" && identifierRe.MatchString(line):
			d.Identifier = labelValue(identifierRe, line)
		case d.DevicePath == "" && deviceNodeRe.MatchString(line):
			d.DevicePath = labelValue(deviceNodeRe, line)
		case d.Protocol == "" && protocolRe.MatchString(line):
			d.Protocol = labelValue(protocolRe, line)
		case externalRe.MatchString(line):
			d.External = true
		case mountedRe.MatchString(line):
			d.Mounted = true
		case readOnlyRe.MatchString(line):
			d.ReadOnly = true
		}
	}

	return d
}

func labelValue(re *regexp.Regexp, line string) string {
	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Builder turns disk identifiers into Descriptors by querying diskutil.
type Builder struct {
	tool   Tool
	logger *slog.Logger
}

func NewBuilder(tool Tool, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{tool: tool, logger: logger}
}

// Describe queries the disk and parses the report. A failed query returns
// an error wrapping ErrQuery and no Descriptor.
func (b *Builder) Describe(ctx context.Context, id string) (Descriptor, error) {
	out, err := b.tool.Info(ctx, id)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: describe %s: %w", ErrQuery, id, err)
	}

	d := ParseInfo(string(out))
	b.logger.Debug("described disk",
		"disk", id,
		"identifier", d.Identifier,
		"device", d.DevicePath,
		"external", d.External,
		"protocol", d.Protocol,
		"mounted", d.Mounted,
		"read_only", d.ReadOnly,
	)
	return d, nil
}
