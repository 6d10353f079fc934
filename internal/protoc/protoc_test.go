package protoc

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStub writes an executable shell script standing in for the external
// compiler and returns its path.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "protoc-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestCompile_CollectsFragments(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args.txt")
	stub := writeStub(t, `
out=""
for a in "$@"; do
  case "$a" in
    --prost_out=*) out="${a#--prost_out=}";;
  esac
done
printf '%s\n' "$@" > "`+argsFile+`"
printf 'pub struct Ping {}\n' > "$out/acme.v1.rs"
printf 'pub struct Bare {}\n' > "$out/_.rs"
printf 'not a fragment\n' > "$out/readme.txt"
`)

	c := &Compiler{Path: stub, ExtraInclude: "/opt/extra"}
	frags, err := c.Compile([]string{"one/a.proto", "two/b.proto"}, []string{"one", "two"})
	require.NoError(t, err)

	assert.Equal(t, "pub struct Ping {}\n", frags["acme.v1"])
	assert.Equal(t, "pub struct Bare {}\n", frags[""], "_ fragment maps to the default namespace")
	assert.Len(t, frags, 2, "non-fragment files in the staging dir are ignored")

	raw, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")

	// Every root is an include path, then the extra include, then the
	// output destination, then every schema file.
	require.GreaterOrEqual(t, len(args), 6)
	assert.Equal(t, "-Ione", args[0])
	assert.Equal(t, "-Itwo", args[1])
	assert.Equal(t, "-I/opt/extra", args[2])
	assert.True(t, strings.HasPrefix(args[3], "--prost_out="))
	assert.Equal(t, []string{"one/a.proto", "two/b.proto"}, args[4:])
}

func TestCompile_Failure(t *testing.T) {
	stub := writeStub(t, `
echo "bad.proto:3:1: expected identifier" >&2
exit 1
`)

	c := &Compiler{Path: stub}
	_, err := c.Compile([]string{"bad.proto"}, []string{"."})
	require.Error(t, err)

	var cerr *CompilationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 1, cerr.ExitCode)
	assert.Contains(t, cerr.Output, "bad.proto:3:1")
	assert.Contains(t, err.Error(), "expected identifier")
}

func TestNew_Environment(t *testing.T) {
	t.Setenv(EnvCompiler, "/usr/local/bin/protoc-custom")
	t.Setenv(EnvInclude, "/srv/protos")
	c := New()
	assert.Equal(t, "/usr/local/bin/protoc-custom", c.Path)
	assert.Equal(t, "/srv/protos", c.ExtraInclude)

	t.Setenv(EnvCompiler, "")
	t.Setenv(EnvInclude, "")
	c = New()
	assert.Equal(t, "protoc", c.Path)
	assert.Equal(t, "", c.ExtraInclude)
}

func TestHasServices(t *testing.T) {
	msgOnly := Fragments{"a": "pub struct Ping {}\n"}
	assert.False(t, HasServices(msgOnly))

	withSvc := Fragments{
		"a": "pub struct Ping {}\n",
		"b": "pub mod echo_server {\n    use tonic::codegen::*;\n}\n",
	}
	assert.True(t, HasServices(withSvc))
}
