package build

import (
	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
)

const (
	msgSelectorRequired = "need to use at least one of `--package NAME`, `--example NAME` or `--bin NAME`"
	msgProfileConflict  = "conflicting usage of --profile and --release. " +
		"The `--release` flag is the same as `--profile=release`. Remove one flag or the other to continue"
	msgCargoFailed = "build failed due to cargo error"
)

func errUnsupportedOption(option string) error {
	return errors.ConfigError("runwasm does not support the " + option + " option").
		WithContext("option", option).
		Build()
}

func errPassthroughSelector(option string) error {
	return errors.ConfigError("pass " + option + " to runwasm instead of after `--`").
		WithContext("option", option).
		Build()
}

func errArtifactMissing(path string) error {
	return errors.ArtifactMissingError("there is no binary at " + path +
		", maybe you used `--package NAME` on a package that has no binary?").
		WithContext("path", path).
		Build()
}
