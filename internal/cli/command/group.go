package command

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/output"
	"github.com/yndnr/bil-go/internal/core/domain"
)

// GroupCommand returns the pay group subcommand group. Every subcommand
// works on the active project unless --project is given.
func GroupCommand() *cli.Command {
	return &cli.Command{
		Name:    "group",
		Aliases: []string{"paygroup"},
		Usage:   "Manage pay groups of the active project",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List pay groups with their totals",
				Flags:  contextFlags(false),
				Action: groupList,
			},
			{
				Name:      "add",
				Usage:     "Create a pay group",
				ArgsUsage: "NAME",
				Flags:     contextFlags(false),
				Action:    groupAdd,
			},
			{
				Name:      "rename",
				Usage:     "Rename a pay group",
				ArgsUsage: "GROUP_ID NAME",
				Flags:     contextFlags(false),
				Action:    groupRename,
			},
			{
				Name:      "delete",
				Usage:     "Delete a pay group",
				ArgsUsage: "GROUP_ID",
				Flags:     append(contextFlags(false), forceFlag()),
				Action:    groupDelete,
			},
			{
				Name:      "use",
				Usage:     "Make a pay group the active pay group",
				ArgsUsage: "GROUP_ID",
				Flags:     contextFlags(false),
				Action:    groupUse,
			},
		},
	}
}

// groupRow is one line of the group list.
type groupRow struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Payments int    `json:"payments" yaml:"payments"`
	Paid     string `json:"paid" yaml:"paid"`
	Owed     string `json:"owed" yaml:"owed"`
	Active   bool   `json:"active" yaml:"active"`
}

func groupList(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ac := rt.Session.Context()
	if ac.ProjectID == 0 {
		return domain.ErrNoActiveProject
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	project, err := rt.Session.GetProjectDetails(ctx, ac.ProjectID, ac.HistoryState)
	if err != nil {
		return err
	}

	rows := make([]groupRow, 0, len(project.PayGroups))
	for i := range project.PayGroups {
		g := &project.PayGroups[i]
		paid, owed := g.Totals()
		rows = append(rows, groupRow{
			ID:       g.ID,
			Name:     g.Name,
			Payments: len(g.Payments),
			Paid:     paid.String(),
			Owed:     owed.String(),
			Active:   g.ID == ac.PayGroupID,
		})
	}

	format, err := outputFormat(c, rt)
	if err != nil {
		return err
	}
	if format != output.FormatTable {
		return output.NewFormatter(format, false).Format(c.App.Writer, rows)
	}

	table := output.NewTable("ID", "NAME", "PAYMENTS", "PAID", "OWED", "ACTIVE")
	for _, r := range rows {
		active := ""
		if r.Active {
			active = "*"
		}
		table.AddRow(strconv.FormatInt(r.ID, 10), r.Name, strconv.Itoa(r.Payments), r.Paid, r.Owed, active)
	}
	return table.Render(c.App.Writer)
}

func groupAdd(c *cli.Context) error {
	name := c.Args().First()
	if err := domain.ValidateName(name); err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	id, err := rt.Session.AddGroup(ctx, rt.Session.Context().ProjectID, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Pay group created: %d\n", id)
	return nil
}

func groupRename(c *cli.Context) error {
	id, err := argID(c, 0, "group ID")
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
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.UpdateGroup(ctx, id, domain.PayGroupInput{Name: name}); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Pay group %d renamed.\n", id)
	return nil
}

func groupDelete(c *cli.Context) error {
	id, err := argID(c, 0, "group ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	if !confirm(c, fmt.Sprintf("Delete pay group %d and its payments?", id)) {
		return nil
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.DeleteGroup(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Pay group %d deleted.\n", id)
	return nil
}

func groupUse(c *cli.Context) error {
	id, err := argID(c, 0, "group ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	rt.Session.SetActiveGroup(id)

	ac := rt.Session.Context()
	if ac.ProjectID == 0 {
		fmt.Fprintf(c.App.Writer, "Active pay group: %d (no active project yet)\n", id)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Active pay group: %d in project %d\n", id, ac.ProjectID)
	return nil
}
