// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bv-cli/pkg/project"
	"bv-cli/pkg/pysrc"
	"bv-cli/pkg/venv"
)

func TestTokenMinting(t *testing.T) {
	var zero Token
	if zero.Valid() {
		t.Error("zero token reports valid")
	}

	first, err := NewToken()
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewToken()
	if err != nil {
		t.Fatal(err)
	}
	if !first.Valid() || !second.Valid() {
		t.Error("minted token reports invalid")
	}
	if first.Env() == second.Env() {
		t.Error("two minted tokens are identical")
	}
	if !strings.HasPrefix(first.Env(), TokenEnvVar+"=") {
		t.Errorf("token env entry = %q", first.Env())
	}
}

func TestWorkdirResolution(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{"default", "", "/proj"},
		{"relative", "tasks", filepath.Join("/proj", "tasks")},
		{"absolute", "/elsewhere", "/elsewhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workdir("/proj", tt.entry); got != tt.want {
				t.Errorf("workdir = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDriverScriptPerConvention(t *testing.T) {
	tests := []struct {
		name       string
		convention pysrc.CallConvention
		contains   string
	}{
		{"no arg", pysrc.CallNoArg, `getattr(_mod, "main")()`},
		{"dict", pysrc.CallDict, `(_payload or {})`},
		{"optional dict", pysrc.CallOptionalDict, `if _payload is not None`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := driverScript("tasks.billing", "main", tt.convention)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(script, tt.contains) {
				t.Errorf("driver script missing %q:\n%s", tt.contains, script)
			}
			if !strings.Contains(script, `importlib.import_module("tasks.billing")`) {
				t.Errorf("driver script does not import the module:\n%s", script)
			}
		})
	}
}

func TestRunRejectsInputForNoArgEntrypoint(t *testing.T) {
	root := t.TempDir()
	src := "def main():\n    pass\n"
	if err := os.WriteFile(filepath.Join(root, "main.py"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	r := New(venv.NewManager(filepath.Join(root, ".venv")), pysrc.NewResolver(root))
	err := r.Run(context.Background(), Request{
		Entrypoint:  project.EntryPoint{Name: "main", Command: "main:main"},
		ProjectRoot: root,
		Input:       map[string]any{"key": "value"},
	})
	if err == nil || !strings.Contains(err.Error(), "takes no input") {
		t.Fatalf("Run returned %v, want input rejection", err)
	}
}

func TestRunRejectsUninspectableEntrypoint(t *testing.T) {
	root := t.TempDir()

	r := New(venv.NewManager(filepath.Join(root, ".venv")), pysrc.NewResolver(root))
	err := r.Run(context.Background(), Request{
		Entrypoint:  project.EntryPoint{Name: "ghost", Command: "missing:main"},
		ProjectRoot: root,
	})
	if err == nil {
		t.Fatal("Run succeeded for a missing module")
	}
}

func TestRunRejectsMalformedCommand(t *testing.T) {
	r := New(venv.NewManager(t.TempDir()), pysrc.NewResolver(t.TempDir()))
	err := r.Run(context.Background(), Request{
		Entrypoint: project.EntryPoint{Name: "bad", Command: "no-colon"},
	})
	if err == nil {
		t.Fatal("Run accepted a command without module:function syntax")
	}
}
