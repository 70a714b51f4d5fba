package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a key in the config file",
				ArgsUsage: "KEY VALUE",
				Description: fmt.Sprintf("Valid keys: %v. Changes to server, mode and dev_port "+
					"apply to the next invocation.", config.Keys()),
				Action: configSet,
			},
			{
				Name:   "path",
				Usage:  "Print the config file path",
				Action: configPath,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	return printResult(c, rt, rt.Config().ToMap())
}

func configSet(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE (valid keys: %v)", config.Keys())
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	// Start from the file, not the flag-merged runtime config.
	fileCfg, err := config.Load(rt.ConfigPath)
	if err != nil {
		return err
	}
	updated, err := config.Set(fileCfg, key, value)
	if err != nil {
		return err
	}
	if err := config.Save(updated, rt.ConfigPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	current, err := config.Set(rt.Config(), key, value)
	if err != nil {
		return err
	}
	rt.SetConfig(current)

	fmt.Fprintf(c.App.Writer, "Set %s = %v in %s\n", key, updated.ToMap()[key], rt.ConfigPath)
	return nil
}

func configPath(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, rt.ConfigPath)
	return nil
}
