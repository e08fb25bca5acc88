package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/runwasm/internal/config"
)

// Global carries process-wide state into command Run methods.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"runwasm.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run      RunCmd      `cmd:"" default:"withargs" help:"Build a wasm target and serve it (default command)"`
	Init     InitCmd     `cmd:"" help:"Write a sample runwasm.yaml"`
	Template TemplateCmd `cmd:"" help:"Print the default host page template"`

	env config.Env
}

// AfterApply runs after flag parsing: load dotenv files, capture the
// environment and set up logging once.
func (c *CLI) AfterApply() error {
	if _, err := config.LoadDotEnv("."); err != nil {
		return err
	}
	c.env = config.FromEnv(os.LookupEnv)

	level, ok := config.ParseLogLevel(c.env.LogLevel)
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if !ok {
		slog.Warn("Ignoring unknown log level", slog.String("value", c.env.LogLevel))
	}
	return nil
}

// Env returns the environment captured during AfterApply.
func (c *CLI) Env() config.Env {
	return c.env
}

// loadConfig reads the config file. The default file is optional; an
// explicitly named one must exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == "" {
		return config.Default(), nil
	}
	if c.Config == config.DefaultFile {
		return config.LoadOrDefault(c.Config)
	}
	return config.Load(c.Config)
}
