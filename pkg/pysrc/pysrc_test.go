// SPDX-License-Identifier: MPL-2.0

package pysrc

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidModuleName(t *testing.T) {
	tests := []struct {
		module string
		want   bool
	}{
		{"main", true},
		{"tasks.billing", true},
		{"_private.mod2", true},
		{"", false},
		{"1main", false},
		{"tasks..billing", false},
		{"tasks.", false},
		{"tasks/billing", false},
	}
	for _, tt := range tests {
		if got := ValidModuleName(tt.module); got != tt.want {
			t.Errorf("ValidModuleName(%q) = %v, want %v", tt.module, got, tt.want)
		}
	}
}

func TestResolveModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.py"), "def main():\n    pass\n")
	writeFile(t, filepath.Join(root, "tasks", "__init__.py"), "")
	writeFile(t, filepath.Join(root, "tasks", "billing.py"), "def charge(data):\n    pass\n")

	r := NewResolver(root)

	tests := []struct {
		module  string
		want    string
		wantErr bool
	}{
		{"main", filepath.Join(root, "main.py"), false},
		{"tasks", filepath.Join(root, "tasks", "__init__.py"), false},
		{"tasks.billing", filepath.Join(root, "tasks", "billing.py"), false},
		{"missing", "", true},
		{"tasks.missing", "", true},
		{"bad name", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			got, err := r.Resolve(tt.module)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) succeeded with %q, want error", tt.module, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.module, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.module, got, tt.want)
			}
		})
	}
}

func TestInspectSignatures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), `from typing import Any

def no_args():
    return {}

def required_one(payload):
    return payload

def optional_one(input: dict[str, Any] | None = None) -> dict[str, Any]:
    return input or {}

async def async_handler(event=None):
    return event

def multi(
    first: dict[str, int],
    second="x",
):
    return first

def two_required(a, b):
    return a

def star_only(*args, **kwargs):
    return args

alias = required_one

def _indented_helper():
    def inner(a, b, c):
        pass
    return inner
`)

	r := NewResolver(root)

	tests := []struct {
		function string
		params   int
		required int
		conv     CallConvention
		convErr  bool
	}{
		{"no_args", 0, 0, CallNoArg, false},
		{"required_one", 1, 1, CallDict, false},
		{"optional_one", 1, 0, CallOptionalDict, false},
		{"async_handler", 1, 0, CallOptionalDict, false},
		{"multi", 2, 1, CallDict, false},
		{"two_required", 2, 2, 0, true},
		{"star_only", 0, 0, CallOptionalDict, false},
	}
	for _, tt := range tests {
		t.Run(tt.function, func(t *testing.T) {
			sig, err := r.Inspect("app", tt.function)
			if err != nil {
				t.Fatalf("Inspect failed: %v", err)
			}
			if sig.Params != tt.params || sig.Required != tt.required {
				t.Errorf("signature = %+v, want params=%d required=%d", sig, tt.params, tt.required)
			}
			conv, err := sig.Convention()
			if tt.convErr {
				if err == nil {
					t.Errorf("Convention() = %v, want error", conv)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convention failed: %v", err)
			}
			if conv != tt.conv {
				t.Errorf("Convention() = %v, want %v", conv, tt.conv)
			}
		})
	}
}

func TestInspectAssignedName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "def base(x=None):\n    return x\n\nhandler = base\n")

	r := NewResolver(root)
	sig, err := r.Inspect("app", "handler")
	if err != nil {
		t.Fatalf("Inspect failed for assigned name: %v", err)
	}
	if sig.Name != "handler" {
		t.Errorf("Name = %q, want handler", sig.Name)
	}
}

func TestInspectMissingFunction(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "def present():\n    pass\n")

	r := NewResolver(root)
	if _, err := r.Inspect("app", "absent"); err == nil {
		t.Error("Inspect succeeded for missing function, want error")
	}
}

func TestNestedDefsAreNotTopLevel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "def outer():\n    def inner(a, b):\n        pass\n    return inner\n")

	r := NewResolver(root)
	if _, err := r.Inspect("app", "inner"); err == nil {
		t.Error("Inspect found nested function at top level")
	}
}
