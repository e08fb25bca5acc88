// Package workspace resolves the Cargo workspace root and target directory for a build.
//
// The authoritative answer comes from `cargo metadata`, which costs tens of
// milliseconds on every invocation. Resolver starts that query in the background
// and meanwhile walks up from the manifest directory looking for a directory that
// holds both a `target` directory and a `Cargo.toml`. In the conventional layout
// the walk succeeds first and the query is abandoned; the query only decides the
// result when the target directory was moved elsewhere (for example with
// CARGO_TARGET_DIR).
//
// The walk accepts a false positive when an unrelated directory named `target`
// sits next to an unrelated Cargo.toml in some ancestor. Cargo warns about stray
// manifests, so this is accepted rather than guarded against.
package workspace
