package build

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

const (
	// Triple is the cross-compilation target every build uses.
	Triple = "wasm32-unknown-unknown"
	// CrossTargetDirName keeps wasm artifacts apart from the native build cache.
	CrossTargetDirName = "wasm-examples-target"
	// BundleDirName holds one bundle directory per built target.
	BundleDirName = "wasm-examples"

	profileDev     = "dev"
	profileRelease = "release"
	profileDebug   = "debug"
)

// bannedOptions are cargo flags runwasm sets itself. Passing them through
// would make the artifact path unpredictable.
var bannedOptions = []string{
	"--target",
	"--target-dir",
}

// selectorOptions decide the artifact name or profile directory. They are
// accepted as runwasm flags only.
var selectorOptions = []string{
	"--package",
	"--example",
	"--bin",
	"--release",
	"--profile",
}

// selectorShorts maps cargo's short selector flags to their long names.
var selectorShorts = map[byte]string{
	'p': "--package",
	'r': "--release",
}

// valueShorts are cargo build short flags that consume the rest of a cluster.
const valueShorts = "FjZ"

// Request selects what to build and how.
type Request struct {
	Package string
	Example string
	Bin     string

	// Profile is a cargo profile name. Empty means the dev profile.
	Profile string
	// Release is shorthand for Profile "release".
	Release bool

	Features          []string
	AllFeatures       bool
	NoDefaultFeatures bool

	// ExtraArgs are appended to the cargo invocation unchanged.
	ExtraArgs []string
}

// TargetName is the name of the compiled binary: the example if given, else
// the bin, else the package.
func (r Request) TargetName() string {
	switch {
	case r.Example != "":
		return r.Example
	case r.Bin != "":
		return r.Bin
	default:
		return r.Package
	}
}

// EffectiveProfile returns the cargo profile to pass, or "" for the default.
func (r Request) EffectiveProfile() string {
	if r.Release {
		return profileRelease
	}
	return r.Profile
}

// Validate reports option problems as configuration errors.
func (r Request) Validate() error {
	if r.Package == "" && r.Example == "" && r.Bin == "" {
		return errors.ConfigError(msgSelectorRequired).Build()
	}
	if r.Release && r.Profile != "" {
		return errors.ConfigError(msgProfileConflict).
			WithContext("profile", r.Profile).
			Build()
	}
	selectors := []struct{ field, value string }{
		{"package", r.Package},
		{"example", r.Example},
		{"bin", r.Bin},
	}
	for _, s := range selectors {
		if s.value != "" && !validName(s.value) {
			return errors.ConfigError("invalid " + s.field + " name: " + s.value).
				WithContext(s.field, s.value).
				Build()
		}
	}
	for _, arg := range r.ExtraArgs {
		if option, ok := bannedOption(arg); ok {
			return errUnsupportedOption(option)
		}
		if option, ok := selectorOption(arg); ok {
			return errPassthroughSelector(option)
		}
	}
	return nil
}

// CargoArgs returns the full cargo argument list using crossDir as the target directory.
func (r Request) CargoArgs(crossDir string) []string {
	args := []string{"build", "--target", Triple, "--target-dir", crossDir}
	if r.Package != "" {
		args = append(args, "--package", r.Package)
	}
	if r.Example != "" {
		args = append(args, "--example", r.Example)
	}
	if r.Bin != "" {
		args = append(args, "--bin", r.Bin)
	}
	if p := r.EffectiveProfile(); p != "" {
		args = append(args, "--profile", p)
	}
	if len(r.Features) > 0 {
		args = append(args, "--features", strings.Join(r.Features, ","))
	}
	if r.AllFeatures {
		args = append(args, "--all-features")
	}
	if r.NoDefaultFeatures {
		args = append(args, "--no-default-features")
	}
	return append(args, r.ExtraArgs...)
}

// ProfileDirName maps a cargo profile to the directory cargo writes it to.
func ProfileDirName(profile string) string {
	if profile == "" || profile == profileDev {
		return profileDebug
	}
	return profile
}

// CrossTargetDir is the cargo --target-dir used for wasm builds.
func CrossTargetDir(targetDir string) string {
	return filepath.Join(targetDir, CrossTargetDirName)
}

// ArtifactPath is where cargo leaves the compiled wasm binary for r.
func ArtifactPath(targetDir string, r Request) string {
	dir := filepath.Join(CrossTargetDir(targetDir), Triple, ProfileDirName(r.EffectiveProfile()))
	if r.Example != "" {
		dir = filepath.Join(dir, "examples")
	}
	return filepath.Join(dir, r.TargetName()+".wasm")
}

// BundleDir is the directory served for target name.
func BundleDir(targetDir, name string) string {
	return filepath.Join(targetDir, BundleDirName, name)
}

func bannedOption(arg string) (string, bool) {
	return matchLong(arg, bannedOptions)
}

// selectorOption finds a selector in arg, either as a long flag or inside a
// cluster of short flags such as "-rp" or "-papp".
func selectorOption(arg string) (string, bool) {
	if strings.HasPrefix(arg, "--") {
		return matchLong(arg, selectorOptions)
	}
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	for i := 1; i < len(arg); i++ {
		if option, ok := selectorShorts[arg[i]]; ok {
			return option, true
		}
		if strings.IndexByte(valueShorts, arg[i]) >= 0 {
			break
		}
	}
	return "", false
}

func matchLong(arg string, options []string) (string, bool) {
	for _, option := range options {
		if arg == option || strings.HasPrefix(arg, option+"=") {
			return option, true
		}
	}
	return "", false
}

// validName accepts cargo target names: ASCII letters, digits, '-' and '_',
// not starting with '-'.
func validName(name string) bool {
	if strings.HasPrefix(name, "-") {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
