// SPDX-License-Identifier: MPL-2.0

// Package pysrc provides static inspection of Python source trees.
//
// The packaging tool manages Python automation projects but must never load
// or execute user code, so entrypoint targets are checked by resolving
// dotted module names to files on disk and scanning those files for
// top-level definitions. A Resolver is a scoped resolution context: it is
// constructed for one project root, used for one validation or run, and
// discarded. There is no ambient search-path state.
package pysrc

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// CallConvention is the closed set of entrypoint calling shapes the runner
// supports. It is resolved once per invocation from the function signature.
type CallConvention int

const (
	// CallNoArg is a function taking no arguments at all.
	CallNoArg CallConvention = iota
	// CallDict is a function requiring exactly one argument, which
	// receives the input object.
	CallDict
	// CallOptionalDict is a function whose single input parameter has a
	// default, so it may be called with or without the input object.
	CallOptionalDict
)

// String returns a short human-readable name for the convention.
func (c CallConvention) String() string {
	switch c {
	case CallNoArg:
		return "no-arg"
	case CallDict:
		return "dict-arg"
	case CallOptionalDict:
		return "optional-dict-arg"
	}
	return "unknown"
}

// Signature describes the parameter shape of a top-level function.
type Signature struct {
	// Name is the function name.
	Name string
	// Params is the number of named parameters (excluding *args/**kwargs).
	Params int
	// Required is the number of named parameters without a default.
	Required int
	// HasVarArgs is true when the signature declares *args.
	HasVarArgs bool
	// HasVarKwargs is true when the signature declares **kwargs.
	HasVarKwargs bool
}

// Convention classifies the signature into the runner's calling-convention
// set. An error means the shape is outside the supported set (for example,
// two or more required parameters).
func (s Signature) Convention() (CallConvention, error) {
	switch {
	case s.Params == 0 && !s.HasVarArgs && !s.HasVarKwargs:
		return CallNoArg, nil
	case s.Required == 0 && (s.Params >= 1 || s.HasVarArgs):
		return CallOptionalDict, nil
	case s.Required == 1:
		return CallDict, nil
	case s.Required == 0:
		// Only **kwargs: cannot receive a positional input object.
		return CallNoArg, nil
	}
	return 0, fmt.Errorf("function %q requires %d positional arguments; entrypoints must accept 0 or 1", s.Name, s.Required)
}

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidModuleName reports whether module is a well-formed dotted Python
// module path (e.g. "main" or "tasks.billing").
func ValidModuleName(module string) bool {
	if module == "" {
		return false
	}
	for _, part := range strings.Split(module, ".") {
		if !identRegex.MatchString(part) {
			return false
		}
	}
	return true
}

// Resolver resolves dotted module names against a single project root.
type Resolver struct {
	root string
}

// NewResolver creates a resolution context rooted at the given directory.
func NewResolver(projectRoot string) *Resolver {
	return &Resolver{root: projectRoot}
}

// Resolve maps a dotted module name to the source file that defines it:
// either <root>/a/b.py or the package file <root>/a/b/__init__.py.
func (r *Resolver) Resolve(module string) (string, error) {
	if !ValidModuleName(module) {
		return "", fmt.Errorf("invalid module name %q", module)
	}

	rel := filepath.Join(strings.Split(module, ".")...)

	modFile := filepath.Join(r.root, rel+".py")
	if info, err := os.Stat(modFile); err == nil && !info.IsDir() {
		return modFile, nil
	}

	pkgFile := filepath.Join(r.root, rel, "__init__.py")
	if info, err := os.Stat(pkgFile); err == nil && !info.IsDir() {
		return pkgFile, nil
	}

	return "", fmt.Errorf("module %q not found under %s (looked for %s.py and %s%c__init__.py)",
		module, r.root, rel, rel, filepath.Separator)
}

// Inspect resolves a module and looks up a top-level function in it.
// The function body is never executed; the source is scanned statically.
func (r *Resolver) Inspect(module, function string) (Signature, error) {
	path, err := r.Resolve(module)
	if err != nil {
		return Signature{}, err
	}

	sigs, assigned, err := scanFile(path)
	if err != nil {
		return Signature{}, err
	}

	if sig, ok := sigs[function]; ok {
		return sig, nil
	}
	if assigned[function] {
		// Assigned names (e.g. aliases of callables) are accepted but
		// their shape is unknown; treat as optional-dict capable.
		return Signature{Name: function, Params: 1, Required: 0}, nil
	}
	return Signature{}, fmt.Errorf("function %q not found at top level of module %q (%s)", function, module, path)
}

var (
	defRegex    = regexp.MustCompile(`^(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	assignRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::[^=]+)?=[^=]`)
)

// scanFile extracts top-level function signatures and assigned names.
// Only column-zero definitions count as top level.
func scanFile(path string) (map[string]Signature, map[string]bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read module source: %w", err)
	}
	defer f.Close()

	sigs := make(map[string]Signature)
	assigned := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pending strings.Builder
	collecting := false

	for scanner.Scan() {
		line := scanner.Text()

		if collecting {
			pending.WriteString(" ")
			pending.WriteString(strings.TrimSpace(line))
			if sigComplete(pending.String()) {
				if sig, ok := parseDef(pending.String()); ok {
					sigs[sig.Name] = sig
				}
				collecting = false
				pending.Reset()
			}
			continue
		}

		if m := defRegex.FindStringSubmatch(line); m != nil {
			if sigComplete(line) {
				if sig, ok := parseDef(line); ok {
					sigs[sig.Name] = sig
				}
			} else {
				pending.Reset()
				pending.WriteString(line)
				collecting = true
			}
			continue
		}

		if m := assignRegex.FindStringSubmatch(line); m != nil {
			assigned[m[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to scan module source: %w", err)
	}

	return sigs, assigned, nil
}

// sigComplete reports whether a (possibly joined) def line contains the
// full parameter list, i.e. its parentheses are balanced.
func sigComplete(line string) bool {
	depth := 0
	opened := false
	for _, c := range line {
		switch c {
		case '(', '[', '{':
			depth++
			opened = true
		case ')', ']', '}':
			depth--
		}
	}
	return opened && depth == 0
}

// parseDef parses a complete "def name(params):" line into a Signature.
func parseDef(line string) (Signature, bool) {
	m := defRegex.FindStringSubmatchIndex(line)
	if m == nil {
		return Signature{}, false
	}
	name := line[m[2]:m[3]]

	open := strings.Index(line, "(")
	if open < 0 {
		return Signature{}, false
	}

	// Find the matching close paren for the parameter list.
	depth := 0
	end := -1
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return Signature{}, false
	}

	sig := Signature{Name: name}
	for _, param := range splitParams(line[open+1 : end]) {
		param = strings.TrimSpace(param)
		switch {
		case param == "" || param == "/" || param == "*":
			continue
		case strings.HasPrefix(param, "**"):
			sig.HasVarKwargs = true
		case strings.HasPrefix(param, "*"):
			sig.HasVarArgs = true
		default:
			sig.Params++
			if !paramHasDefault(param) {
				sig.Required++
			}
		}
	}
	return sig, true
}

// splitParams splits a parameter list on top-level commas, ignoring commas
// nested in brackets (annotations like dict[str, Any]) or strings.
func splitParams(s string) []string {
	var parts []string
	depth := 0
	start := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// paramHasDefault reports whether a single parameter declares a default
// value, i.e. contains '=' outside any brackets or strings.
func paramHasDefault(param string) bool {
	depth := 0
	var quote byte
	for i := 0; i < len(param); i++ {
		c := param[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '=':
			if depth == 0 {
				return true
			}
		}
	}
	return false
}
