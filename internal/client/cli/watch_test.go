package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/invoicekeeper/internal/client/iocli"
	"github.com/iudanet/invoicekeeper/internal/client/storage/boltdb"
	"github.com/iudanet/invoicekeeper/internal/config"
)

func newTestApp(t *testing.T) *app {
	t.Helper()
	return &app{
		cfg: &config.ClientConfig{
			Endpoint:    "http://127.0.0.1:1/exec",
			DBPath:      filepath.Join(t.TempDir(), "client.db"),
			Timeout:     time.Second,
			LockTimeout: 100 * time.Millisecond,
		},
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		stdio: iocli.New(strings.NewReader(""), &bytes.Buffer{}),
	}
}

// TestCycleDrainer_ReleasesDatabase проверяет, что между прогонами файл базы свободен
func TestCycleDrainer_ReleasesDatabase(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	drainer := &cycleDrainer{open: a.openLocal, logger: a.log}

	result, err := drainer.Drain(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Zero(t, result.Attempted)

	// Другая команда открывает базу сразу после прогона
	store, err := boltdb.NewWithTimeout(ctx, a.cfg.DBPath, 100*time.Millisecond, nil)
	require.NoError(t, err)
	lastSync, err := store.GetLastSync(ctx)
	require.NoError(t, err)
	assert.False(t, lastSync.IsZero())
	require.NoError(t, store.Close())
}

func TestCycleDrainer_SkipsWhenDatabaseBusy(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	drainer := &cycleDrainer{open: a.openLocal, logger: a.log}

	holder, err := boltdb.New(ctx, a.cfg.DBPath, nil)
	require.NoError(t, err)

	result, err := drainer.Drain(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	require.NoError(t, holder.Close())

	result, err = drainer.Drain(ctx)
	require.NoError(t, err)
	assert.False(t, result.Skipped)
}
