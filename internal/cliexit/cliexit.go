// Package cliexit maps core error kinds to process exit codes.
package cliexit

import (
	"context"
	"errors"

	"github.com/alorle/iptv-cleaner/internal/source"
)

const (
	Success           = 0
	Failure           = 1
	CancelledBySignal = 130
)

// Code returns the process exit code for err (nil meaning success).
// Cancellation (context.Canceled, or anything wrapping it) is reported as
// 130, matching a signal-driven shutdown; every other non-nil error is a
// generic failure, kind-specific handling having already happened where
// the error was produced.
func Code(err error) int {
	if err == nil {
		return Success
	}
	if errors.Is(err, context.Canceled) {
		return CancelledBySignal
	}
	return Failure
}

// Kind classifies an error into the categories the core surfaces, for
// logging purposes; it does not affect the exit code beyond what Code
// already computes.
type Kind string

const (
	KindSourceNotFound   Kind = "SourceNotFound"
	KindInvalidSourceURL Kind = "InvalidSourceUrl"
	KindDownloadFailed   Kind = "DownloadFailed"
	KindParseEmpty       Kind = "ParseEmpty"
	KindCancelled        Kind = "Cancelled"
	KindWriteFailed      Kind = "WriteFailed"
	KindUnknown          Kind = "Unknown"
)

// Classify inspects err and returns the error kind the core reports it
// under.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}

	var notFound *source.ErrNotFound
	if errors.As(err, &notFound) {
		return KindSourceNotFound
	}
	var invalidURL *source.ErrInvalidURL
	if errors.As(err, &invalidURL) {
		return KindInvalidSourceURL
	}
	var downloadFailed *source.ErrDownloadFailed
	if errors.As(err, &downloadFailed) {
		return KindDownloadFailed
	}

	return KindUnknown
}
