package generator

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/protocrate/protocrate/internal/versions"
)

// Descriptor is the crate identity written into the manifest. It is static
// configuration; nothing in it derives from the schema content.
type Descriptor struct {
	Name    string
	Version string
	Authors []string
}

// cargoManifest mirrors the Cargo.toml layout the crate needs.
type cargoManifest struct {
	Package      cargoPackage      `toml:"package"`
	Dependencies map[string]string `toml:"dependencies"`
}

type cargoPackage struct {
	Name    string   `toml:"name"`
	Version string   `toml:"version"`
	Authors []string `toml:"authors,omitempty"`
	Edition string   `toml:"edition"`
}

// writeManifest emits Cargo.toml at path, overwriting any previous manifest.
//
// Without a template, the manifest is synthesized: the descriptor plus the
// runtime dependencies the generated code actually needs. Message code pulls
// in prost and prost-types; service code additionally pulls in tonic. With a
// template, the _PKG_NAME_, _PKG_AUTHORS_ and _PKG_VERSION_ placeholders are
// substituted and the template's dependency section is taken verbatim.
func writeManifest(path string, desc Descriptor, withServices bool, templatePath string) error {
	var content []byte
	if templatePath != "" {
		tmpl, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("read manifest template: %w", err)
		}
		content = []byte(renderTemplate(string(tmpl), desc))
	} else {
		deps := map[string]string{
			"prost":       versions.Prost,
			"prost-types": versions.ProstTypes,
		}
		if withServices {
			deps["tonic"] = versions.Tonic
		}
		m := cargoManifest{
			Package: cargoPackage{
				Name:    desc.Name,
				Version: desc.Version,
				Authors: desc.Authors,
				Edition: "2021",
			},
			Dependencies: deps,
		}
		encoded, err := toml.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}
		content = append([]byte("# @generated by protocrate\n"), encoded...)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return &EmissionError{Path: path, Err: err}
	}
	return nil
}

// renderTemplate substitutes the descriptor into a user-supplied manifest
// template.
func renderTemplate(tmpl string, desc Descriptor) string {
	quoted := make([]string, len(desc.Authors))
	for i, a := range desc.Authors {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	out := strings.ReplaceAll(tmpl, "_PKG_NAME_", fmt.Sprintf("%q", desc.Name))
	out = strings.ReplaceAll(out, "_PKG_AUTHORS_", strings.Join(quoted, ","))
	out = strings.ReplaceAll(out, "_PKG_VERSION_", fmt.Sprintf("%q", desc.Version))
	return out
}
