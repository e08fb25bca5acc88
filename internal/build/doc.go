// Package build compiles a wasm target with cargo and assembles the browser
// bundle for it.
//
// A build runs in fixed stages: cargo compiles the target into a dedicated
// target directory, the artifact is checked, the post-processor writes the
// JavaScript loader next to it and the host page is rendered last. Stage
// durations and the final outcome are reported to a metrics.Recorder.
//
// Requests are validated before any subprocess is started so that option
// conflicts never cost a compile.
package build
