package mounts

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, dirs ...string) (*Checker, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}

	var out bytes.Buffer
	return NewChecker(fs, &out), &out
}

func TestNewCheckerDefaultsToHostFs(t *testing.T) {
	dir := t.TempDir()

	var out bytes.Buffer
	c := NewChecker(nil, &out)
	require.NoError(t, c.Check(context.Background(), []string{dir}))

	err := c.Check(context.Background(), []string{dir + "/missing"})
	var merr *MissingMountsError
	require.ErrorAs(t, err, &merr)
}

func TestCheckAllPresent(t *testing.T) {
	c, out := newTestChecker(t, "/scratch", "/home/alice", "/maps/datasets/bar")

	err := c.Check(context.Background(), []string{"/scratch", "/home/alice", "/maps/datasets/bar"})
	require.NoError(t, err)

	assert.Equal(t, "Checking /scratch\nChecking /home/alice\nChecking /maps/datasets/bar\n", out.String())
}

func TestCheckReportsEveryMissingPath(t *testing.T) {
	c, out := newTestChecker(t, "/scratch")
	require.NoError(t, afero.WriteFile(c.Fs, "/home/alice", []byte("not a dir"), 0o644))

	paths := []string{"/scratch", "/home/alice", "/maps/datasets/missing", "/maps/sdir/alice/also missing"}
	err := c.Check(context.Background(), paths)
	require.Error(t, err)

	var merr *MissingMountsError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, []string{"/home/alice", "/maps/datasets/missing", "/maps/sdir/alice/also missing"}, merr.Paths)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "Checking /scratch", lines[0])
	assert.Equal(t, "Checking /home/alice", lines[1])
	assert.Equal(t, "ERROR: Mount-point /home/alice does not exist or is not a folder", lines[2])
	assert.Equal(t, "Checking /maps/datasets/missing", lines[3])
	assert.True(t, strings.HasPrefix(lines[6], "ERROR: Mount-point "))
	assert.Contains(t, lines[6], "also")
}

func TestCheckEmpty(t *testing.T) {
	c, out := newTestChecker(t)
	require.NoError(t, c.Check(context.Background(), nil))
	assert.Empty(t, out.String())
}
