package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidVersion, "not a version")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeInvalidVersion {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidVersion, err.Code)
	}
	if err.Message != "not a version" {
		t.Errorf("expected message 'not a version', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(ErrCodeTagExists, "tag %q already exists", "v1.2.3")
	if err.Message != `tag "v1.2.3" already exists` {
		t.Errorf("unexpected message: %s", err.Message)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeManifest, "operation failed", cause)

	if err.Code != ErrCodeManifest {
		t.Errorf("expected code %s, got %s", ErrCodeManifest, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("exit status 128")
	ctx := map[string]interface{}{
		"command": "git describe --tags",
		"dir":     "/work/project",
	}

	err := WrapWithContext(ErrCodeVcsUnavailable, "git invocation failed", cause, ctx)

	if err.Code != ErrCodeVcsUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeVcsUnavailable, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "git describe --tags" {
		t.Errorf("expected command context to be preserved")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeDirtyRepository, "working tree has uncommitted changes"),
			expected: "[DIRTY_REPOSITORY] working tree has uncommitted changes",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeUnsupportedTransition, "failed", errors.New("root cause")),
			expected: "[UNSUPPORTED_BUMP_TRANSITION] failed: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestErrorsAs(t *testing.T) {
	var sErr *StructuredError
	err := error(Wrap(ErrCodeTagExists, "tag exists", errors.New("boom")))
	if !errors.As(err, &sErr) {
		t.Fatal("errors.As should find StructuredError")
	}
	if sErr.Code != ErrCodeTagExists {
		t.Errorf("expected code %s, got %s", ErrCodeTagExists, sErr.Code)
	}
}
