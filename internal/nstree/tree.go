// Package nstree builds the unified namespace tree out of the schema files
// collected from every input root. The tree is the single source of truth
// for the module hierarchy the emitted crate will have.
package nstree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/protocrate/protocrate/internal/collector"
)

// Tree is a rooted tree of namespace segments. Nodes live in an arena and
// are addressed by integer id; id 0 is always the root (the empty
// namespace). Children are stored as id lists so the tree can be looked up
// by name and visited top-down without cyclic references.
type Tree struct {
	nodes []node
}

type node struct {
	// segment is the raw namespace segment as declared ("" for the root).
	segment  string
	parent   int
	children []int
	files    []collector.SchemaFile
}

// ConflictError reports sibling namespace segments that are distinct as
// declared but collide once normalized to module identifiers. It names every
// offending full path and every schema file contributing to them, so the
// operator can fix the collision without re-running with extra diagnostics.
type ConflictError struct {
	Paths []string
	Files []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("namespaces %s collide after module-identifier normalization (declared in: %s)",
		strings.Join(e.Paths, " and "), strings.Join(e.Files, ", "))
}

// Build constructs the namespace tree from the combined schema file list of
// all roots. Identical namespace paths merge into one node regardless of
// which root declared them; a namespace that is a strict prefix of another
// becomes a node that both owns files and has children. The only failure is
// a *ConflictError for sibling segments that normalize to the same module
// identifier.
func Build(files []collector.SchemaFile) (*Tree, error) {
	t := &Tree{nodes: []node{{parent: -1}}}
	for _, f := range files {
		id := 0
		if f.Namespace != "" {
			for _, seg := range strings.Split(f.Namespace, ".") {
				id = t.child(id, seg)
			}
		}
		t.nodes[id].files = append(t.nodes[id].files, f)
	}
	if err := t.checkCollisions(0); err != nil {
		return nil, err
	}
	return t, nil
}

// child returns the id of the child of parent with the given raw segment,
// creating it if unseen.
func (t *Tree) child(parent int, segment string) int {
	for _, c := range t.nodes[parent].children {
		if t.nodes[c].segment == segment {
			return c
		}
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, node{segment: segment, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// checkCollisions walks the finished tree and rejects siblings whose
// normalized identifiers coincide. Detection runs after the full build so
// the error can name every contributing file on both sides.
func (t *Tree) checkCollisions(id int) error {
	byIdent := make(map[string][]int)
	for _, c := range t.nodes[id].children {
		ident := ModuleIdent(t.nodes[c].segment)
		byIdent[ident] = append(byIdent[ident], c)
	}
	idents := make([]string, 0, len(byIdent))
	for ident := range byIdent {
		idents = append(idents, ident)
	}
	sort.Strings(idents)
	for _, ident := range idents {
		group := byIdent[ident]
		if len(group) > 1 {
			conflict := &ConflictError{}
			for _, c := range group {
				conflict.Paths = append(conflict.Paths, t.Path(c))
				for _, f := range t.subtreeFiles(c) {
					conflict.Files = append(conflict.Files, f.Path)
				}
			}
			sort.Strings(conflict.Files)
			return conflict
		}
	}
	for _, c := range t.nodes[id].children {
		if err := t.checkCollisions(c); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) subtreeFiles(id int) []collector.SchemaFile {
	files := append([]collector.SchemaFile(nil), t.nodes[id].files...)
	for _, c := range t.nodes[id].children {
		files = append(files, t.subtreeFiles(c)...)
	}
	return files
}

// Root returns the id of the root node.
func (t *Tree) Root() int { return 0 }

// Segment returns the raw namespace segment of a node ("" for the root).
func (t *Tree) Segment(id int) string { return t.nodes[id].segment }

// Files returns the schema files whose namespace terminates at this node.
func (t *Tree) Files(id int) []collector.SchemaFile { return t.nodes[id].files }

// HasFiles reports whether any schema file declares exactly this namespace.
func (t *Tree) HasFiles(id int) bool { return len(t.nodes[id].files) > 0 }

// Path returns the full dotted namespace path of a node ("" for the root).
func (t *Tree) Path(id int) string {
	if id == 0 {
		return ""
	}
	parent := t.Path(t.nodes[id].parent)
	if parent == "" {
		return t.nodes[id].segment
	}
	return parent + "." + t.nodes[id].segment
}

// SortedChildren returns the node's children ordered by module identifier,
// the deterministic order emission uses.
func (t *Tree) SortedChildren(id int) []int {
	children := append([]int(nil), t.nodes[id].children...)
	sort.Slice(children, func(a, b int) bool {
		return ModuleIdent(t.nodes[children[a]].segment) < ModuleIdent(t.nodes[children[b]].segment)
	})
	return children
}

// Namespaces returns every namespace path that owns files, sorted.
func (t *Tree) Namespaces() []string {
	var out []string
	for id := range t.nodes {
		if len(t.nodes[id].files) > 0 {
			out = append(out, t.Path(id))
		}
	}
	sort.Strings(out)
	return out
}

// rustKeywords are module names that need escaping in the generated crate.
// Most take the raw-identifier prefix; the path keywords cannot and get a
// trailing underscore instead.
var rustKeywords = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"enum": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true,
	"true": true, "type": true, "unsafe": true, "use": true, "where": true,
	"while": true, "dyn": true, "abstract": true, "become": true,
	"box": true, "do": true, "final": true, "macro": true, "override": true,
	"priv": true, "typeof": true, "unsized": true, "virtual": true,
	"yield": true, "async": true, "await": true, "try": true,
}

var rustPathKeywords = map[string]bool{
	"self": true, "super": true, "extern": true, "crate": true,
}

// ModuleIdent normalizes a namespace segment to the module identifier used
// in the generated crate: ASCII lowercase plus reserved-keyword escaping.
func ModuleIdent(segment string) string {
	ident := strings.ToLower(segment)
	switch {
	case rustKeywords[ident]:
		return "r#" + ident
	case rustPathKeywords[ident]:
		return ident + "_"
	}
	return ident
}

// DirName is the directory name backing a module: the normalized identifier
// with raw-identifier escaping stripped, since the filesystem needs no
// escaping.
func DirName(segment string) string {
	return strings.TrimPrefix(ModuleIdent(segment), "r#")
}
