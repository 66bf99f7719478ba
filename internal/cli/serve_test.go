package cli

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aretw0/hsn/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServe_StopsOnCancel(t *testing.T) {
	app := buildApp(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- RunServe(ctx, app, ServeOptions{Port: 0, Watch: true, Ready: func(addr string) { ready <- addr }})
	}()

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("server never started")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * ShutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestNewTableWatcher_ReloadsTable(t *testing.T) {
	cfg := testConfig(t)
	app := buildApp(t, cfg)

	w, err := NewTableWatcher(app)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, os.WriteFile(cfg.Data.File, []byte(testutils.SampleCSV+"85,Electrical machinery\n"), 0o644))

	assert.Eventually(t, func() bool {
		return app.Assistant.Table().Len() == 8
	}, 5*time.Second, 50*time.Millisecond)
}
