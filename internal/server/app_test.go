package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medtrack/internal/server/config"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.DatabaseDSN = "memory://"
	c.LogLevel = "error"
	return c
}

func TestNewApp_Memory(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	require.NotNil(t, app.httpServer)
	require.NoError(t, app.repos.Ping(context.Background()))
}

func TestNewApp_UnknownScheme(t *testing.T) {
	c := testConfig()
	c.DatabaseDSN = "redis://localhost:6379"
	c.SecretKey = "prod-secret"

	_, err := NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestNewApp_RejectsDefaultSecretWithPersistentStore(t *testing.T) {
	for _, dsn := range []string{"postgres://u:p@127.0.0.1:1/medtrack", "mongodb://127.0.0.1:1/medTrack"} {
		c := testConfig()
		c.DatabaseDSN = dsn

		_, err := NewApp(context.Background(), c)
		assert.ErrorIs(t, err, ErrDefaultSecret, dsn)
	}
}

func TestNewApp_MemoryStoreAllowsDefaultSecret(t *testing.T) {
	c := testConfig()
	require.True(t, c.UsesDefaultSecret())

	_, err := NewApp(context.Background(), c)
	require.NoError(t, err)
}

func TestNewApp_WithAttachments(t *testing.T) {
	c := testConfig()
	c.S3Bucket = "prescriptions"
	c.S3RootUser = "minio"
	c.S3RootPassword = "minio123"
	c.S3BaseEndpoint = "http://localhost:9000"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	assert.NotNil(t, app.httpServer)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
