package chrome

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hungBrowser is an executable that never prints a DevTools endpoint.
func hungBrowser(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "hung-chrome")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755))
	return path
}

func TestNewDriverTimesOutHungLaunch(t *testing.T) {
	t.Parallel()

	factory := NewFactory(Options{Headless: true, Timeout: time.Second, ExecPath: hungBrowser(t)}, nil)

	start := time.Now()
	driver, err := factory.NewDriver(context.Background(), nil)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, ErrStartupTimeout)
	assert.Nil(t, driver)
	assert.Less(t, elapsed, time.Second+abortGrace+time.Second)
}

func TestNewDriverStopsLaunchWhenContextEnds(t *testing.T) {
	t.Parallel()

	factory := NewFactory(Options{Headless: true, Timeout: time.Minute, ExecPath: hungBrowser(t)}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	driver, err := factory.NewDriver(ctx, nil)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, driver)
	assert.Less(t, elapsed, 300*time.Millisecond+abortGrace+time.Second)
}

func TestNewDriverRejectsDoneContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFactory(Options{}, nil).NewDriver(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
