// Package errors provides the classified error primitives used across runwasm.
//
// Every failure that reaches the CLI is a ClassifiedError carrying a category,
// a severity and optional structured context. The categories mirror the
// failure kinds of a run:
//
//   - CategoryConfig: conflicting or unsupported options, detected before any
//     external process runs
//   - CategoryResolution: the workspace root or target directory could not be
//     determined
//   - CategoryToolchain: cargo exited with a failure status (cargo has already
//     printed its own diagnostics)
//   - CategoryArtifactMissing: the build succeeded but the expected binary is absent
//   - CategoryPostProcess: wasm-bindgen failed
//   - CategoryTemplate: the host page template or stylesheet was rejected
//
// Example usage:
//
//	err := errors.ArtifactMissingError("no wasm binary produced").
//		WithContext("path", wasmPath).
//		Build()
package errors
