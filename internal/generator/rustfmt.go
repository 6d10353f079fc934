package generator

import (
	"log/slog"
	"os/exec"
)

// formatFiles runs rustfmt over the emitted scaffolding files when it is
// available on PATH. The generated fragments arrive pre-formatted, so a
// missing or failing rustfmt is a warning, never an error.
func formatFiles(paths []string) {
	if len(paths) == 0 {
		return
	}
	rustfmt, err := exec.LookPath("rustfmt")
	if err != nil {
		slog.Debug("rustfmt not found, skipping format pass")
		return
	}
	args := append([]string{"--edition", "2021"}, paths...)
	if out, err := exec.Command(rustfmt, args...).CombinedOutput(); err != nil {
		slog.Warn("rustfmt failed", "error", err, "output", string(out))
	}
}
