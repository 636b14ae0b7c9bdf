package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/ark3us/apkpuredl"
)

const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitInvalidArgs    = 2
	ExitUnknownVersion = 3
	ExitArchNotFound   = 4
	ExitNetworkError   = 5
	ExitMarkupError    = 6
	ExitDownloadFailed = 7
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFromError(err))
	}
}

func exitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errUsage):
		return ExitInvalidArgs
	case errors.Is(err, apkpuredl.ErrUnknownVersion), errors.Is(err, apkpuredl.ErrAppNotFound):
		return ExitUnknownVersion
	case errors.Is(err, apkpuredl.ErrArchNotFound):
		return ExitArchNotFound
	case errors.Is(err, apkpuredl.ErrTransport):
		return ExitNetworkError
	case errors.Is(err, apkpuredl.ErrMarkupShape):
		return ExitMarkupError
	case errors.Is(err, apkpuredl.ErrDownloadFailed):
		return ExitDownloadFailed
	default:
		var statusErr *apkpuredl.StatusError
		if errors.As(err, &statusErr) {
			return ExitNetworkError
		}
		return ExitGeneralError
	}
}
