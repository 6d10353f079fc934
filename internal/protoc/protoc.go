// Package protoc wraps the external schema compiler. The compiler is treated
// as an opaque tool: given the full schema file set and the include search
// paths it must produce one generated Rust source fragment per namespace,
// named "<dotted.namespace>.rs" ("_.rs" for the default namespace), the way
// a prost/tonic code generator does. Service code, if any, is inlined in the
// namespace's fragment.
package protoc

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// EnvCompiler names the compiler executable. Defaults to "protoc".
	EnvCompiler = "PROTOC"
	// EnvInclude names one extra include directory passed to every
	// invocation, after the input roots.
	EnvInclude = "PROTOC_INCLUDE"
)

// Fragments maps a dotted namespace (empty string for the default namespace)
// to the generated source produced for it. Produced once per run and handed
// straight to emission; never persisted.
type Fragments map[string]string

// Invoker is the compiler boundary. The real implementation shells out to
// protoc; tests inject stubs.
type Invoker interface {
	Compile(files []string, includes []string) (Fragments, error)
}

// CompilationError carries the external compiler's raw diagnostics when it
// exits nonzero. Schema errors are deterministic, so the invocation is never
// retried.
type CompilationError struct {
	ExitCode int
	Output   string
	Err      error
}

func (e *CompilationError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("schema compiler failed (exit status %d): %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("schema compiler failed (exit status %d):\n%s", e.ExitCode, out)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// Compiler invokes the external schema compiler.
type Compiler struct {
	// Path is the compiler executable.
	Path string
	// ExtraInclude is an additional include directory, or empty.
	ExtraInclude string
}

// New builds a Compiler from the environment. Both variables are read once
// here and passed through unmodified afterwards.
func New() *Compiler {
	path := os.Getenv(EnvCompiler)
	if path == "" {
		path = "protoc"
	}
	return &Compiler{Path: path, ExtraInclude: os.Getenv(EnvInclude)}
}

// Compile runs the compiler once over the whole file set. Every root is
// passed as an include path, not just the root containing a given file,
// because a schema in one tree may import a type defined in another.
//
// The call blocks until the external process exits; there is no timeout,
// since this is a one-shot local compilation rather than a network call.
//
// Returns:
//   - Fragments: One generated source fragment per namespace encountered.
//   - error: A *CompilationError when the compiler reports any failure.
func (c *Compiler) Compile(files []string, includes []string) (Fragments, error) {
	staging, err := os.MkdirTemp("", "protocrate-out-")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	args := make([]string, 0, len(includes)+len(files)+2)
	for _, inc := range includes {
		args = append(args, "-I"+inc)
	}
	if c.ExtraInclude != "" {
		args = append(args, "-I"+c.ExtraInclude)
	}
	args = append(args, "--prost_out="+staging)
	args = append(args, files...)

	var stderr bytes.Buffer
	cmd := exec.Command(c.Path, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return nil, &CompilationError{
			ExitCode: exitCode,
			Output:   stderr.String(),
			Err:      err,
		}
	}

	return readFragments(staging)
}

// readFragments loads the per-namespace fragment files the compiler wrote
// into the staging directory.
func readFragments(dir string) (Fragments, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}
	frags := make(Fragments, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".rs" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read fragment %s: %w", e.Name(), err)
		}
		ns := strings.TrimSuffix(e.Name(), ".rs")
		if ns == "_" {
			ns = ""
		}
		frags[ns] = string(content)
	}
	return frags, nil
}

// HasServices reports whether any generated fragment contains service code.
// Detection scans the generated source for the gRPC runtime marker rather
// than re-parsing the IDL; it decides which runtime dependencies the
// manifest must declare.
func HasServices(frags Fragments) bool {
	for _, src := range frags {
		if strings.Contains(src, "tonic::") {
			return true
		}
	}
	return false
}
