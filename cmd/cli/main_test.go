package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akeren/multiverse-waitlist/pkg/waitlistclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportEntries = []waitlistclient.Entry{
	{Email: "a@example.com", CreatedAt: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)},
}

func TestWriteExport_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")

	require.NoError(t, writeExport(path, exportEntries))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "a@example.com,2026-03-20,"))
}

func TestWriteExport_ReportsCreateFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "export.csv")
	assert.Error(t, writeExport(path, exportEntries))
}

func TestWriteExport_ReportsFailedWrite(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	assert.Error(t, writeExport("/dev/full", exportEntries))
}
