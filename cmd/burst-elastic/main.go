package main

import (
	"os"

	"github.com/ssfdust/burst-elastic/cmd/burst-elastic/cmd"
	"github.com/ssfdust/burst-elastic/internal/common/app"
	"github.com/ssfdust/burst-elastic/internal/common/bursterrors"
	"github.com/ssfdust/burst-elastic/internal/common/logging"
)

func main() {
	logging.ConfigureCliLogging()
	ctx := app.CreateContextWithShutdown()
	if err := cmd.RootCmd().ExecuteContext(ctx); err != nil {
		logging.WithStacktrace(err).Error("burst-elastic failed")
		os.Exit(bursterrors.ExitCodeFromError(err))
	}
}
