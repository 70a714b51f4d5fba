package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/output"
	"github.com/yndnr/bil-go/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Client and server status",
		Subcommands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "Show build information",
				Action: systemVersion,
			},
			{
				Name:   "metrics",
				Usage:  "Show client request and session metrics",
				Action: systemMetrics,
			},
			{
				Name:   "ping",
				Usage:  "Check that the API answers",
				Action: systemPing,
			},
			{
				Name:  "context",
				Usage: "Show the active project, pay group and read-only state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Clear the active context and leave read-only mode",
					},
				},
				Action: systemContext,
			},
		},
	}
}

func systemVersion(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	return printResult(c, rt, buildinfo.Get())
}

func systemMetrics(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	samples, err := rt.Metrics.Snapshot()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	format, err := outputFormat(c, rt)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, false).Format(c.App.Writer, samples)
	}

	table := output.NewTable("METRIC", "LABELS", "VALUE")
	for _, s := range samples {
		labels := s.LabelString()
		if labels == "" {
			labels = "-"
		}
		table.AddRow(s.Name, labels, fmt.Sprintf("%g", s.Value))
	}
	return table.Render(c.App.Writer)
}

func systemPing(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	spinner := output.NewSpinner(c.App.ErrWriter, "Contacting "+rt.Client.BaseURL())
	spinner.Start()

	var reply string
	if err := rt.Client.Fetch(ctx, "/ping", &reply); err != nil {
		spinner.Fail("API unreachable")
		return err
	}
	spinner.Success("API reachable")

	fmt.Fprintf(c.App.Writer, "%s (%s)\n", reply, rt.Client.BaseURL())
	return nil
}

// contextView is the printable active context.
type contextView struct {
	Project      int64  `json:"project" yaml:"project"`
	PayGroup     int64  `json:"paygroup" yaml:"paygroup"`
	ReadOnly     bool   `json:"read_only" yaml:"read_only"`
	HistoryState string `json:"history_state" yaml:"history_state"`
}

func systemContext(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	if c.Bool("reset") {
		rt.Session.Reset()
	}

	ac := rt.Session.Context()
	return printResult(c, rt, contextView{
		Project:      ac.ProjectID,
		PayGroup:     ac.PayGroupID,
		ReadOnly:     ac.ReadOnly,
		HistoryState: ac.HistoryState,
	})
}
