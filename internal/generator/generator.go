// Package generator assembles the output crate: it drives collection, tree
// building and compilation, then emits the module hierarchy and the manifest.
package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/protocrate/protocrate/internal/collector"
	"github.com/protocrate/protocrate/internal/nstree"
	"github.com/protocrate/protocrate/internal/protoc"
	"github.com/protocrate/protocrate/internal/ui"
)

// Options configures a single crate generation run.
type Options struct {
	// OutputDir is where the crate is generated.
	OutputDir string
	// Roots are the schema tree root directories, in CLI order.
	Roots []string
	// Package is the crate identity written into the manifest.
	Package Descriptor
	// ManifestTemplate is an optional Cargo.toml template path; when set
	// the manifest is produced by placeholder substitution instead of
	// being synthesized.
	ManifestTemplate string
	// DisableRustfmt skips the formatting pass over emitted files.
	DisableRustfmt bool
	// Invoker is the schema compiler. Nil means the real protoc wrapper,
	// configured from the environment; tests inject stubs here.
	Invoker protoc.Invoker
}

// EmissionError reports a filesystem failure while writing the output crate.
// Emission failures are fatal for the run; a later run performs a full
// rebuild over whatever was left behind.
type EmissionError struct {
	Path string
	Err  error
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *EmissionError) Unwrap() error { return e.Err }

// Generate performs one full, idempotent rebuild of the output crate.
//
// The pipeline is strictly sequential: collect, build the namespace tree,
// compile, emit modules, format, emit the manifest. Compilation runs before
// the output directory is touched, so a failing compile leaves any previous
// output fully intact; within an emitting run the manifest is written last.
func Generate(opts Options) error {
	files, err := collector.Collect(opts.Roots)
	if err != nil {
		return err
	}
	slog.Info("collected schema files", "count", len(files), "roots", len(opts.Roots))

	tree, err := nstree.Build(files)
	if err != nil {
		return err
	}
	slog.Info("built namespace tree", "namespaces", len(tree.Namespaces()))

	invoker := opts.Invoker
	if invoker == nil {
		invoker = protoc.New()
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	var frags protoc.Fragments
	err = ui.RunSpinner("Compiling schemas...", func() error {
		var compileErr error
		frags, compileErr = invoker.Compile(paths, opts.Roots)
		return compileErr
	})
	if err != nil {
		return err
	}
	slog.Info("compiled schemas", "fragments", len(frags))

	srcDir := filepath.Join(opts.OutputDir, "src")
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return &EmissionError{Path: opts.OutputDir, Err: err}
	}
	// Full-rebuild semantics: the previous module hierarchy, including any
	// namespace that no longer exists, is removed wholesale.
	if err := os.RemoveAll(srcDir); err != nil {
		return &EmissionError{Path: srcDir, Err: err}
	}
	if err := os.MkdirAll(srcDir, 0755); err != nil {
		return &EmissionError{Path: srcDir, Err: err}
	}

	emitted, err := emitModules(srcDir, tree, frags)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Modules", fmt.Sprintf("%d file(s) under %s", len(emitted), srcDir))

	if !opts.DisableRustfmt {
		formatFiles(emitted)
	}

	manifestPath := filepath.Join(opts.OutputDir, "Cargo.toml")
	if err := writeManifest(manifestPath, opts.Package, protoc.HasServices(frags), opts.ManifestTemplate); err != nil {
		return err
	}
	ui.PrintSuccess("Manifest", manifestPath)
	return nil
}
