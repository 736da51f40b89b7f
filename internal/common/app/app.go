package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

// CreateContextWithShutdown returns a context that will report done when a SIGINT or SIGTERM is received
func CreateContextWithShutdown() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			logging.Infof("Received %s, draining outstanding requests", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
