package disk

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usbReport = `   Device Identifier:         disk4s1
   Device Node:               /dev/disk4s1
   Whole:                     No
   Part of Whole:             disk4

   Volume Name:               STICK
   Mounted:                   Yes
   Mount Point:               /Volumes/STICK

   Partition Type:            Windows_NTFS
   File System Personality:   NTFS
   Type (Bundle):             ntfs

   Protocol:                  USB
   SMART Status:              Not Supported

   Read-Only Media:           No
   Read-Only Volume:          Yes

   Device Location:           External
   Removable Media:           Removable
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseInfo_FullReport(t *testing.T) {
	d := ParseInfo(usbReport)

	assert.Equal(t, Descriptor{
		Identifier: "disk4s1",
		DevicePath: "/dev/disk4s1",
		External:   true,
		Protocol:   "USB",
		Mounted:    true,
		ReadOnly:   true,
	}, d)
}

func TestParseInfo_Empty(t *testing.T) {
	assert.Equal(t, Descriptor{}, ParseInfo(""))
}

func TestParseInfo_ReadOnly(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   bool
	}{
		{"no indent", "Read-Only Volume: Yes", true},
		{"spaces", "      Read-Only Volume:          Yes", true},
		{"tab", "\tRead-Only Volume:\tYes", true},
		{"no", "   Read-Only Volume:          No", false},
		{"media only", "   Read-Only Media:           Yes", false},
		{"absent", "   Mounted: Yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInfo(tt.report).ReadOnly)
		})
	}
}

func TestParseInfo_External(t *testing.T) {
	tests := []struct {
		name   string
		report string
		want   bool
	}{
		{"external", "   Device Location:           External", true},
		{"internal", "   Device Location:           Internal", false},
		{"other value", "   Device Location:           External Bay", false},
		{"absent", "   Protocol: USB", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseInfo(tt.report).External)
		})
	}
}

func TestParseInfo_FirstLabelWins(t *testing.T) {
	report := "Device Identifier: disk2\nDevice Identifier: disk3\nProtocol:   Thunderbolt  \nProtocol: USB\n"

	d := ParseInfo(report)

	assert.Equal(t, "disk2", d.Identifier)
	assert.Equal(t, "Thunderbolt", d.Protocol)
}

func TestParseInfo_MountedRequiresYes(t *testing.T) {
	assert.False(t, ParseInfo("   Mounted:                   No").Mounted)
	assert.True(t, ParseInfo("   Mounted:                   Yes").Mounted)
}

func TestParseInfo_Idempotent(t *testing.T) {
	assert.Equal(t, ParseInfo(usbReport), ParseInfo(usbReport))
}

func TestDescriptorTarget(t *testing.T) {
	assert.Equal(t, "/dev/disk4s1", Descriptor{Identifier: "disk4s1", DevicePath: "/dev/disk4s1"}.Target())
	assert.Equal(t, "disk4s1", Descriptor{Identifier: "disk4s1"}.Target())
}

func TestBuilderDescribe(t *testing.T) {
	tool := &fakeTool{reports: map[string]string{"disk4s1": usbReport}}
	b := NewBuilder(tool, testLogger())

	d, err := b.Describe(context.Background(), "disk4s1")

	require.NoError(t, err)
	assert.Equal(t, "/dev/disk4s1", d.DevicePath)
	assert.Equal(t, []string{"disk4s1"}, tool.infoCalls)
}

func TestBuilderDescribe_QueryFailure(t *testing.T) {
	b := NewBuilder(&fakeTool{}, testLogger())

	d, err := b.Describe(context.Background(), "disk9")

	require.ErrorIs(t, err, ErrQuery)
	assert.Contains(t, err.Error(), "disk9")
	assert.Equal(t, Descriptor{}, d)
}
