package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "risk not found")

	if !HasCode(err, CodeNotFound) {
		t.Fatalf("expected CodeNotFound on %v", err)
	}
	if HasCode(err, CodeBadRequest) {
		t.Fatalf("did not expect CodeBadRequest on %v", err)
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Fatalf("plain errors carry no code")
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	inner := New(CodeConflict, "duplicate engagement title")
	outer := fmt.Errorf("plan audit: %w", inner)

	if !HasCode(outer, CodeConflict) {
		t.Fatalf("expected code to survive fmt wrapping")
	}
	if CodeOf(outer) != CodeConflict {
		t.Fatalf("CodeOf = %q, want %q", CodeOf(outer), CodeConflict)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to load risks")

	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause to be reachable via errors.Is")
	}
	if MessageOf(err) != "failed to load risks" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Errorf("ToHTTPStatus(%q) = %d, want %d", code, got, want)
		}
	}
}
