// Package bindgen runs wasm-bindgen to turn a compiled wasm binary into an ES
// module loader that browsers can import directly.
package bindgen

import (
	"context"

	"git.home.luguber.info/inful/runwasm/internal/foundation/errors"
	"git.home.luguber.info/inful/runwasm/internal/toolchain"
)

// DefaultExecutable is used when no wasm-bindgen path is configured.
const DefaultExecutable = "wasm-bindgen"

// CLI invokes the wasm-bindgen command line tool.
type CLI struct {
	executable string
	runner     toolchain.Runner
}

// New returns a CLI post-processor. An empty executable selects DefaultExecutable.
func New(executable string, runner toolchain.Runner) *CLI {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &CLI{executable: executable, runner: runner}
}

// Args returns the wasm-bindgen arguments for input and outDir. The web target
// emits an ES module whose default export initializes the wasm instance.
func Args(input, outDir string) []string {
	return []string{"--target", "web", "--out-dir", outDir, input}
}

// Generate writes the loader code for input into outDir. Any failure is fatal
// and the underlying error is kept as the cause.
func (c *CLI) Generate(ctx context.Context, input, outDir string) error {
	err := c.runner.Run(ctx, toolchain.Command{
		Name: c.executable,
		Args: Args(input, outDir),
	})
	if err != nil {
		return errors.PostProcessError("wasm-bindgen failed").WithCause(err).
			WithContext("input", input).
			WithContext("out_dir", outDir).
			Build()
	}
	return nil
}
