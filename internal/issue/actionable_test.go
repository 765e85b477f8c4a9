// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "anything") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if WrapResource(nil, "anything", "res") != nil {
		t.Error("WrapResource(nil) should return nil")
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "build package"},
			want: "failed to build package",
		},
		{
			name: "with resource",
			err:  WrapResource(cause, "write artifact", "dist/app-1.0.0.bvpackage"),
			want: "failed to write artifact: dist/app-1.0.0.bvpackage: disk full",
		},
		{
			name: "with cause only",
			err:  Wrap(cause, "publish package"),
			want: "failed to publish package: disk full",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(fmt.Errorf("middle: %w", cause), "run validation")
	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find the root cause through the chain")
	}
}

func TestFormat(t *testing.T) {
	err := WrapResource(errors.New("no such file"), "load project config", "bvproject.yaml").
		Suggest("Run 'bv init' to create a new project", "Pass --config to point at the manifest")

	short := err.Format(false)
	if !strings.Contains(short, "• Run 'bv init' to create a new project") {
		t.Errorf("Format(false) missing suggestion bullet:\n%s", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") || !strings.Contains(long, "1. no such file") {
		t.Errorf("Format(true) missing error chain:\n%s", long)
	}
}
