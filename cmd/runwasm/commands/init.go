package commands

import (
	"fmt"

	"git.home.luguber.info/inful/runwasm/internal/cli"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	fmt.Printf("Writing configuration to %s\n", root.Config)
	req := cli.InitRequest{ConfigPath: root.Config, Force: i.Force}
	if _, err := cli.NewExecutor().ExecuteInit(g.Ctx, req).ToTuple(); err != nil {
		fmt.Println("Initialization failed")
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}
