package command

import (
	"fmt"
	"io"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/output"
	"github.com/yndnr/bil-go/internal/core/domain"
)

// ProjectCommand returns the project subcommand group.
func ProjectCommand() *cli.Command {
	return &cli.Command{
		Name:    "project",
		Aliases: []string{"proj"},
		Usage:   "Manage projects",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List projects",
				Action: projectList,
			},
			{
				Name:      "get",
				Usage:     "Show a project and make it the active project",
				ArgsUsage: "PROJECT_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "history",
						Usage: "Read a historical snapshot (the session becomes read-only)",
					},
				},
				Action: projectGet,
			},
			{
				Name:      "history",
				Usage:     "List the historical snapshots of a project",
				ArgsUsage: "PROJECT_ID",
				Action:    projectHistory,
			},
			{
				Name:      "add",
				Usage:     "Create a project",
				ArgsUsage: "NAME",
				Action:    projectAdd,
			},
			{
				Name:      "rename",
				Usage:     "Rename a project",
				ArgsUsage: "PROJECT_ID NAME",
				Action:    projectRename,
			},
			{
				Name:      "delete",
				Usage:     "Delete a project",
				ArgsUsage: "PROJECT_ID",
				Flags:     []cli.Flag{forceFlag()},
				Action:    projectDelete,
			},
		},
	}
}

func projectList(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	projects, err := rt.Session.ListProjects(ctx)
	if err != nil {
		return err
	}
	return printResult(c, rt, projects)
}

func projectGet(c *cli.Context) error {
	id, err := argID(c, 0, "project ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	project, err := rt.Session.GetProjectDetails(ctx, id, c.String("history"))
	if err != nil {
		return err
	}

	format, err := outputFormat(c, rt)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, false).Format(c.App.Writer, project)
	}
	return renderProject(c.App.Writer, project, c.Bool("wide"))
}

// renderProject prints a project with one payments table per pay group.
func renderProject(w io.Writer, p *domain.Project, wide bool) error {
	title := fmt.Sprintf("Project %d: %s", p.ID, p.Name)
	if p.HistoryState != "" {
		title += fmt.Sprintf(" (history %s, read-only)", p.HistoryState)
	}
	fmt.Fprintln(w, title)

	if len(p.PayGroups) == 0 {
		fmt.Fprintln(w, "\n(no pay groups)")
		return nil
	}

	formatter := &output.TableFormatter{Wide: wide}
	for i := range p.PayGroups {
		g := &p.PayGroups[i]
		paid, owed := g.Totals()
		fmt.Fprintf(w, "\nPay group %d: %s\n", g.ID, g.Name)
		if len(g.Payments) == 0 {
			fmt.Fprintln(w, "  (no payments)")
			continue
		}
		if err := formatter.Format(w, g.Payments); err != nil {
			return err
		}
		fmt.Fprintf(w, "Total paid: %s  owed: %s\n", paid.String(), owed.String())
	}
	return nil
}

func projectHistory(c *cli.Context) error {
	id, err := argID(c, 0, "project ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	states, err := rt.Session.GetProjectHistory(ctx, id)
	if err != nil {
		return err
	}

	format, err := outputFormat(c, rt)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, false).Format(c.App.Writer, states)
	}

	table := output.NewTable("#", "STATE")
	for i, s := range states {
		table.AddRow(strconv.Itoa(i+1), s)
	}
	return table.Render(c.App.Writer)
}

func projectAdd(c *cli.Context) error {
	name := c.Args().First()
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	id, err := rt.Session.AddProject(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Project created: %d\n", id)
	return nil
}

func projectRename(c *cli.Context) error {
	id, err := argID(c, 0, "project ID")
	if err != nil {
		return err
	}
	name := c.Args().Get(1)
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.UpdateProject(ctx, id, domain.ProjectInput{Name: name}); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Project %d renamed.\n", id)
	return nil
}

func projectDelete(c *cli.Context) error {
	id, err := argID(c, 0, "project ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}

	if !confirm(c, fmt.Sprintf("Delete project %d and everything in it?", id)) {
		return nil
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.DeleteProject(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Project %d deleted.\n", id)
	return nil
}
