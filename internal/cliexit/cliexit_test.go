package cliexit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alorle/iptv-cleaner/internal/source"
)

func TestCodeSuccess(t *testing.T) {
	if got := Code(nil); got != Success {
		t.Errorf("got %d, want %d", got, Success)
	}
}

func TestCodeCancelled(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", context.Canceled)
	if got := Code(err); got != CancelledBySignal {
		t.Errorf("got %d, want %d", got, CancelledBySignal)
	}
}

func TestCodeGenericFailure(t *testing.T) {
	if got := Code(errors.New("boom")); got != Failure {
		t.Errorf("got %d, want %d", got, Failure)
	}
}

func TestClassifySourceNotFound(t *testing.T) {
	err := &source.ErrNotFound{Path: "/tmp/missing.m3u"}
	if got := Classify(err); got != KindSourceNotFound {
		t.Errorf("got %v, want %v", got, KindSourceNotFound)
	}
}

func TestClassifyDownloadFailed(t *testing.T) {
	err := &source.ErrDownloadFailed{URL: "http://h/x", StatusCode: 500}
	if got := Classify(err); got != KindDownloadFailed {
		t.Errorf("got %v, want %v", got, KindDownloadFailed)
	}
}

func TestClassifyCancelled(t *testing.T) {
	if got := Classify(context.Canceled); got != KindCancelled {
		t.Errorf("got %v, want %v", got, KindCancelled)
	}
}

func TestClassifyUnknown(t *testing.T) {
	if got := Classify(errors.New("something else")); got != KindUnknown {
		t.Errorf("got %v, want %v", got, KindUnknown)
	}
}
