// Package versions pins the versions of the runtime crates the generated
// code depends on. The manifest emitter looks them up here; they change only
// when the supported code generator changes.
package versions

const (
	// Prost is the prost runtime version declared for message code.
	Prost = "0.13"
	// ProstTypes is the well-known-types crate version.
	ProstTypes = "0.13"
	// Tonic is the gRPC runtime version declared when any namespace
	// defines services.
	Tonic = "0.12"
)
