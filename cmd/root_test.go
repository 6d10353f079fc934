package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/protocrate/protocrate/internal/collector"
	"github.com/protocrate/protocrate/internal/generator"
	"github.com/protocrate/protocrate/internal/nstree"
	"github.com/protocrate/protocrate/internal/protoc"
)

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "discovery",
			err:  &collector.DiscoveryError{Root: "missing", Err: errors.New("no such dir")},
			want: "discovery error",
		},
		{
			name: "namespace conflict",
			err:  &nstree.ConflictError{Paths: []string{"a.Foo", "a.foo"}},
			want: "namespace conflict error",
		},
		{
			name: "compilation",
			err:  &protoc.CompilationError{ExitCode: 1, Output: "boom"},
			want: "compilation error",
		},
		{
			name: "emission",
			err:  &generator.EmissionError{Path: "/out", Err: errors.New("disk full")},
			want: "emission error",
		},
		{
			name: "wrapped emission",
			err:  fmt.Errorf("while finishing: %w", &generator.EmissionError{Path: "/out", Err: errors.New("denied")}),
			want: "emission error",
		},
		{
			name: "uncategorized",
			err:  errors.New("bad flag"),
			want: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, category(tt.err))
		})
	}
}
