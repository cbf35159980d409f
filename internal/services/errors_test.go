package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/openzim/ted/internal/queue"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("socket closed")
	err := Wrap(ErrExhausted, "subtitles", "fetch", "lang fr", base)

	if !errors.Is(err, ErrExhausted) {
		t.Error("wrapped error lost its marker")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error lost its cause")
	}
	want := "retries exhausted: subtitles: fetch: lang fr: socket closed"
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrValidation, "stage", "", "missing metadata", nil)
	if !errors.Is(err, ErrValidation) {
		t.Error("marker missing")
	}
	if err.Error() != "validation error: stage: missing metadata" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestWrapNilMarkerDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", errors.New("boom"))
	if !errors.Is(err, ErrTransient) {
		t.Errorf("err = %v, want ErrTransient marker", err)
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want queue.Status
	}{
		{Wrap(ErrValidation, "stage", "decode", "", nil), queue.StatusSkipped},
		{Wrap(ErrConfiguration, "workflow", "health", "", nil), queue.StatusSkipped},
		{Wrap(ErrExhausted, "subtitles", "fetch", "", nil), queue.StatusFailed},
		{Wrap(ErrUnavailable, "subtitles", "fetch", "", nil), queue.StatusFailed},
		{fmt.Errorf("plain failure"), queue.StatusFailed},
	}
	for _, tc := range cases {
		if got := FailureStatus(tc.err); got != tc.want {
			t.Errorf("FailureStatus(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
