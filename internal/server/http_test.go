package server_test

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lindero/lindero-auth/internal/server"
)

func TestRunStopsWhenContextCancelled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := server.NewHTTPServer(gin.New(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestShutdownTimeoutDefault(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := server.NewHTTPServer(gin.New(), 0)
	require.Equal(t, 10*time.Second, srv.ShutdownTimeout)

	srv = server.NewHTTPServer(gin.New(), 3*time.Second)
	require.Equal(t, 3*time.Second, srv.ShutdownTimeout)
}
