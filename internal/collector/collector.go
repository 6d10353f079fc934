// Package collector discovers schema files under the input root directories
// and extracts the namespace each file declares.
package collector

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// SchemaExt is the file extension of the schema files the collector looks for.
const SchemaExt = ".proto"

// SchemaFile is a single discovered schema file.
type SchemaFile struct {
	// Path is the file path as discovered, relative to the invocation
	// working directory (or absolute if the root was absolute).
	Path string
	// Namespace is the dot-separated namespace declared in the file's
	// package statement. Empty for files without one (default namespace).
	Namespace string
	// Root is the index of the originating root directory in the list
	// passed to Collect.
	Root int
}

// DiscoveryError reports an input root that does not exist or cannot be read.
type DiscoveryError struct {
	Root string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("input root %s: %v", e.Root, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// packageRe matches a package declaration such as "package foo.bar.v1;".
// Only the namespace header is extracted here; everything else in the file
// is the external compiler's business.
var packageRe = regexp.MustCompile(`^\s*package\s+([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*;`)

// Collect walks every root in order and returns all schema files found,
// sorted by slash-normalized path so the result is reproducible across runs
// and operating systems.
//
// Parameters:
//   - roots: Ordered list of input root directories.
//
// Returns:
//   - []SchemaFile: All discovered schema files with their declared namespaces.
//   - error: A *DiscoveryError if a root is missing or unreadable.
func Collect(roots []string) ([]SchemaFile, error) {
	var files []SchemaFile
	for i, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, &DiscoveryError{Root: root, Err: err}
		}
		if !info.IsDir() {
			return nil, &DiscoveryError{Root: root, Err: fmt.Errorf("not a directory")}
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != SchemaExt {
				return nil
			}
			ns, err := readNamespace(path)
			if err != nil {
				return err
			}
			files = append(files, SchemaFile{Path: path, Namespace: ns, Root: i})
			return nil
		})
		if err != nil {
			return nil, &DiscoveryError{Root: root, Err: err}
		}
	}

	sort.Slice(files, func(a, b int) bool {
		return filepath.ToSlash(files[a].Path) < filepath.ToSlash(files[b].Path)
	})
	return files, nil
}

// readNamespace scans a schema file for its first top-level package
// declaration. This is a line scanner, not a parser: it only strips comments
// well enough to find the header, and a file with no package statement is
// assigned the empty namespace rather than rejected.
func readNamespace(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	inBlockComment := false
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line, done := stripComments(scanner.Text(), inBlockComment)
		inBlockComment = !done
		if m := packageRe.FindStringSubmatch(line); m != nil {
			return m[1], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// stripComments removes // and /* */ comment text from a single line.
// inBlock indicates whether the line starts inside a block comment; the
// second return value is false when the line ends inside one.
func stripComments(line string, inBlock bool) (string, bool) {
	var out strings.Builder
	for i := 0; i < len(line); {
		if inBlock {
			end := strings.Index(line[i:], "*/")
			if end < 0 {
				return out.String(), false
			}
			i += end + 2
			inBlock = false
			continue
		}
		if strings.HasPrefix(line[i:], "//") {
			break
		}
		if strings.HasPrefix(line[i:], "/*") {
			i += 2
			inBlock = true
			continue
		}
		out.WriteByte(line[i])
		i++
	}
	return out.String(), !inBlock
}
