package commands

import "git.home.luguber.info/inful/runwasm/internal/cli"

// TemplateCmd prints the built-in host page template as a starting point for --template.
type TemplateCmd struct{}

func (t *TemplateCmd) Run(g *Global, _ *CLI) error {
	_, err := cli.NewExecutor().ExecuteTemplate(g.Ctx).ToTuple()
	return err
}
