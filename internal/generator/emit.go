package generator

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/protocrate/protocrate/internal/nstree"
	"github.com/protocrate/protocrate/internal/protoc"
)

// generatedHeader is the first line of every emitted scaffolding file.
const generatedHeader = "// @generated by protocrate\n"

// libAttrs are the lint allowances at the top of lib.rs; generated message
// code routinely trips these.
var libAttrs = []string{
	"#![allow(clippy::wrong_self_convention)]",
	"#![allow(clippy::large_enum_variant)]",
	"#![allow(clippy::unreadable_literal)]",
}

// emitModules writes one module file per tree node: src/lib.rs for the root
// and src/<path>/mod.rs for every namespace node. Traversal is pre-order
// with children sorted by module identifier, so output is byte-identical
// across runs given identical input. Returns the emitted file paths in
// emission order.
func emitModules(srcDir string, tree *nstree.Tree, frags protoc.Fragments) ([]string, error) {
	used := make(map[string]bool, len(frags))
	var emitted []string

	var emit func(id int, dir string) error
	emit = func(id int, dir string) error {
		path := filepath.Join(dir, "mod.rs")
		if id == tree.Root() {
			path = filepath.Join(dir, "lib.rs")
		} else if err := os.MkdirAll(dir, 0755); err != nil {
			return &EmissionError{Path: dir, Err: err}
		}

		ns := tree.Path(id)
		frag, ok := frags[ns]
		used[ns] = true
		if tree.HasFiles(id) && !ok {
			slog.Warn("no generated fragment for namespace", "namespace", ns)
		}

		children := tree.SortedChildren(id)
		idents := make([]string, len(children))
		for i, c := range children {
			idents[i] = nstree.ModuleIdent(tree.Segment(c))
		}

		if err := os.WriteFile(path, moduleFile(id == tree.Root(), frag, idents), 0644); err != nil {
			return &EmissionError{Path: path, Err: err}
		}
		emitted = append(emitted, path)

		for _, c := range children {
			if err := emit(c, filepath.Join(dir, nstree.DirName(tree.Segment(c)))); err != nil {
				return err
			}
		}
		return nil
	}

	if err := emit(tree.Root(), srcDir); err != nil {
		return nil, err
	}

	// Fragments with no node in the tree are not emitted; the tree built
	// from the schema headers is the source of truth for the hierarchy.
	for ns := range frags {
		if !used[ns] {
			slog.Warn("ignoring fragment for unknown namespace", "namespace", ns)
		}
	}
	return emitted, nil
}

// moduleFile renders one module file: header, then the node's own generated
// content, then the child module declarations, in that fixed order.
func moduleFile(isRoot bool, fragment string, children []string) []byte {
	var b strings.Builder
	b.WriteString(generatedHeader)
	if isRoot {
		for _, attr := range libAttrs {
			b.WriteString(attr)
			b.WriteByte('\n')
		}
	}
	if fragment != "" {
		b.WriteByte('\n')
		b.WriteString(fragment)
		if !strings.HasSuffix(fragment, "\n") {
			b.WriteByte('\n')
		}
	}
	if len(children) > 0 {
		b.WriteByte('\n')
		for _, ident := range children {
			b.WriteString("pub mod ")
			b.WriteString(ident)
			b.WriteString(";\n")
		}
	}
	return []byte(b.String())
}
