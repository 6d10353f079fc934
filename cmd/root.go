package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/protocrate/protocrate/internal/collector"
	"github.com/protocrate/protocrate/internal/config"
	"github.com/protocrate/protocrate/internal/generator"
	"github.com/protocrate/protocrate/internal/nstree"
	"github.com/protocrate/protocrate/internal/protoc"
	"github.com/protocrate/protocrate/pkg/log"
)

var (
	outputDir        string
	pkgName          string
	pkgVersion       string
	pkgAuthors       []string
	manifestTemplate string
	disableRustfmt   bool
	configPath       string
	logLevel         string
)

// rootCmd represents the base command. protocrate is a single-purpose tool,
// so generation runs directly on the root command.
var rootCmd = &cobra.Command{
	Use:   "protocrate --output-dir <path> --pkg-name <name> DIR [DIR...]",
	Short: "Generate a Rust crate from protobuf schema trees",
	Long: `protocrate turns one or more directory trees of protobuf schema files into a
single buildable Rust crate: a src/ module hierarchy mirroring the declared
package namespaces, a lib.rs aggregation root, and a Cargo.toml manifest.

The schema compiler executable is taken from $PROTOC (default "protoc") and
must emit one generated source fragment per namespace; $PROTOC_INCLUDE names
an extra include directory.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(args)
	},
}

// Execute runs the root command and maps any failure to its error category
// on stderr and a nonzero exit code. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", category(err), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&outputDir, "output-dir", "", "Where the crate should be generated (required)")
	rootCmd.Flags().StringVar(&pkgName, "pkg-name", "", "Crate name (required unless set in protocrate.yaml)")
	rootCmd.Flags().StringVar(&pkgVersion, "pkg-version", "", "Crate version (default \"0.1.0\")")
	rootCmd.Flags().StringArrayVar(&pkgAuthors, "pkg-author", nil, "Crate author (repeatable)")
	rootCmd.Flags().StringVar(&manifestTemplate, "manifest-template", "", "Cargo.toml template file to use")
	rootCmd.Flags().BoolVar(&disableRustfmt, "disable-rustfmt", false, "Do not run rustfmt on generated scaffolding")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to protocrate.yaml")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.MarkFlagRequired("output-dir")
}

// runGenerate merges flags over the optional config file and runs one full
// rebuild of the output crate.
func runGenerate(roots []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if pkgName != "" {
		cfg.Package.Name = pkgName
	}
	if pkgVersion != "" {
		cfg.Package.Version = pkgVersion
	}
	if len(pkgAuthors) > 0 {
		cfg.Package.Authors = pkgAuthors
	}
	if manifestTemplate != "" {
		cfg.Manifest.Template = manifestTemplate
	}
	if disableRustfmt {
		cfg.Gen.DisableRustfmt = true
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := log.Init(cfg.Logging.Path, cfg.Logging.Level); err != nil {
		return err
	}

	return generator.Generate(generator.Options{
		OutputDir: outputDir,
		Roots:     roots,
		Package: generator.Descriptor{
			Name:    cfg.Package.Name,
			Version: cfg.Package.Version,
			Authors: cfg.Package.Authors,
		},
		ManifestTemplate: cfg.Manifest.Template,
		DisableRustfmt:   cfg.Gen.DisableRustfmt,
	})
}

// category names the error taxonomy bucket a failure belongs to, so the
// operator can tell a bad input root from a compiler rejection at a glance.
func category(err error) string {
	var (
		discovery   *collector.DiscoveryError
		conflict    *nstree.ConflictError
		compilation *protoc.CompilationError
		emission    *generator.EmissionError
	)
	switch {
	case errors.As(err, &discovery):
		return "discovery error"
	case errors.As(err, &conflict):
		return "namespace conflict error"
	case errors.As(err, &compilation):
		return "compilation error"
	case errors.As(err, &emission):
		return "emission error"
	}
	return "error"
}
