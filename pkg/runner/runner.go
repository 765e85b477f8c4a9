// SPDX-License-Identifier: MPL-2.0

// Package runner executes project entrypoints inside the project's
// virtual environment. The calling convention of the target function is
// resolved once through static signature inspection, and the managed-run
// guard is an explicit capability token minted per run rather than an
// ambient process-wide flag.
package runner

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"bv-cli/pkg/project"
	"bv-cli/pkg/pysrc"
	"bv-cli/pkg/venv"
)

// TokenEnvVar carries the run capability into the child process so the
// runtime helpers imported by user code can tell a managed run from a
// bare interpreter session.
const TokenEnvVar = "BV_RUN_TOKEN"

// Token is the capability that marks execution as part of a managed
// run. Only Runner.Run mints one; everything downstream receives it
// explicitly.
type Token struct {
	value string
}

// NewToken mints a fresh run capability.
func NewToken() (Token, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return Token{}, fmt.Errorf("failed to mint run token: %w", err)
	}
	return Token{value: hex.EncodeToString(buf)}, nil
}

// Valid reports whether the token was minted by NewToken.
func (t Token) Valid() bool { return t.value != "" }

// Env renders the token as an environment entry for the child process.
func (t Token) Env() string { return TokenEnvVar + "=" + t.value }

// Request describes one entrypoint invocation.
type Request struct {
	// Entrypoint is the registered entrypoint to invoke.
	Entrypoint project.EntryPoint

	// ProjectRoot is the directory containing the project sources.
	ProjectRoot string

	// Input is the optional payload handed to the entrypoint function.
	Input map[string]any

	// Stdout and Stderr receive the child process output. Nil writers
	// fall back to the runner process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner invokes entrypoint functions through the project interpreter.
type Runner struct {
	env      *venv.Manager
	resolver *pysrc.Resolver
}

func New(env *venv.Manager, resolver *pysrc.Resolver) *Runner {
	return &Runner{env: env, resolver: resolver}
}

// Run resolves the entrypoint's calling convention, mints a run token,
// and executes the function in the project's virtual environment. Input
// is delivered as a JSON document on the child's argv.
func (r *Runner) Run(ctx context.Context, req Request) error {
	module, function, err := req.Entrypoint.CommandParts()
	if err != nil {
		return err
	}

	sig, err := r.resolver.Inspect(module, function)
	if err != nil {
		return fmt.Errorf("failed to inspect entrypoint %q: %w", req.Entrypoint.Name, err)
	}
	convention, err := sig.Convention()
	if err != nil {
		return fmt.Errorf("entrypoint %q is not invocable: %w", req.Entrypoint.Name, err)
	}
	if convention == pysrc.CallNoArg && len(req.Input) > 0 {
		return fmt.Errorf("entrypoint %q takes no input but input was given", req.Entrypoint.Name)
	}

	token, err := NewToken()
	if err != nil {
		return err
	}

	driver, err := driverScript(module, function, convention)
	if err != nil {
		return err
	}

	args := []string{"-c", driver}
	if req.Input != nil {
		payload, err := json.Marshal(req.Input)
		if err != nil {
			return fmt.Errorf("failed to encode entrypoint input: %w", err)
		}
		args = append(args, string(payload))
	}

	cmd := exec.CommandContext(ctx, r.env.PythonPath(), args...)
	cmd.Dir = workdir(req.ProjectRoot, req.Entrypoint.Workdir)
	cmd.Env = append(os.Environ(), token.Env())
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("entrypoint %q failed: %w", req.Entrypoint.Name, err)
	}
	return nil
}

// workdir resolves the effective working directory of the child.
func workdir(projectRoot, entryWorkdir string) string {
	if entryWorkdir == "" {
		return projectRoot
	}
	if filepath.IsAbs(entryWorkdir) {
		return entryWorkdir
	}
	return filepath.Join(projectRoot, entryWorkdir)
}

// driverScript renders the Python shim that imports the target and
// applies the resolved calling convention. The payload, when present,
// arrives as sys.argv[1].
func driverScript(module, function string, convention pysrc.CallConvention) (string, error) {
	var call string
	switch convention {
	case pysrc.CallNoArg:
		call = fmt.Sprintf("_result = getattr(_mod, %q)()", function)
	case pysrc.CallDict:
		call = fmt.Sprintf("_result = getattr(_mod, %q)(_payload or {})", function)
	case pysrc.CallOptionalDict:
		call = fmt.Sprintf(
			"_fn = getattr(_mod, %q)\n_result = _fn(_payload) if _payload is not None else _fn()",
			function)
	default:
		return "", fmt.Errorf("unsupported calling convention %v", convention)
	}

	lines := []string{
		"import importlib, json, sys",
		fmt.Sprintf("_mod = importlib.import_module(%q)", module),
		"_payload = json.loads(sys.argv[1]) if len(sys.argv) > 1 else None",
		call,
		"if _result is not None:",
		"    print(json.dumps(_result, default=str))",
	}
	return strings.Join(lines, "\n"), nil
}
