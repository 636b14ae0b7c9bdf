package apkpuredl

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrTransport wraps network failures on any outbound request.
	ErrTransport = errors.New("transport error")

	// ErrMarkupShape means an expected element or attribute is missing from a page,
	// usually because the site layout changed or an error page was served.
	ErrMarkupShape = errors.New("unexpected page markup")

	// ErrUnknownVersion means the version label is not in the listing.
	ErrUnknownVersion = errors.New("unknown version")

	// ErrArchNotFound means no detail-page row carries the requested architecture.
	ErrArchNotFound = errors.New("architecture not found")

	// ErrDownloadFailed is matched by a StatusError returned for the final asset fetch.
	ErrDownloadFailed = errors.New("download failed")

	// ErrAppNotFound means a package search returned no app page.
	ErrAppNotFound = errors.New("app not found")
)

const (
	opFetchPage = "fetch page"
	opDownload  = "download failed"
)

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Op   string
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d", e.Op, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrDownloadFailed && e.Op == opDownload
}

func markupError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMarkupShape, fmt.Sprintf(format, args...))
}
