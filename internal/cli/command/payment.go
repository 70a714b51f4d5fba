package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/core/domain"
)

// PaymentCommand returns the payment subcommand group. Every subcommand
// works on the active pay group unless --project and --group are given.
func PaymentCommand() *cli.Command {
	return &cli.Command{
		Name:    "payment",
		Aliases: []string{"pay"},
		Usage:   "Manage payments of the active pay group",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List payments",
				Flags:  contextFlags(true),
				Action: paymentList,
			},
			{
				Name:   "add",
				Usage:  "Create a payment",
				Flags:  append(contextFlags(true), paymentFlags()...),
				Action: paymentAdd,
			},
			{
				Name:      "update",
				Usage:     "Replace a payment",
				ArgsUsage: "PAYMENT_ID",
				Flags:     append(contextFlags(true), paymentFlags()...),
				Action:    paymentUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a payment",
				ArgsUsage: "PAYMENT_ID",
				Flags:     append(contextFlags(true), forceFlag()),
				Action:    paymentDelete,
			},
		},
	}
}

// paymentFlags are the fields of a payment.
func paymentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Payment name",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "date",
			Aliases: []string{"d"},
			Usage:   "Payment date (YYYY-MM-DD, default: today)",
		},
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "Currency code (1 to 3 characters)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "paid",
			Usage: "Amount paid, e.g. 10.50",
			Value: "0",
		},
		&cli.StringFlag{
			Name:  "owed",
			Usage: "Amount owed, e.g. 3.25",
			Value: "0",
		},
	}
}

// paymentInput reads and validates the payment flags.
func paymentInput(c *cli.Context) (domain.PaymentInput, error) {
	paid, err := domain.ParseAmount(c.String("paid"))
	if err != nil {
		return domain.PaymentInput{}, err
	}
	owed, err := domain.ParseAmount(c.String("owed"))
	if err != nil {
		return domain.PaymentInput{}, err
	}

	date := c.String("date")
	if date == "" {
		date = time.Now().Format(domain.DateLayout)
	}

	in := domain.PaymentInput{
		Name:     c.String("name"),
		Date:     date,
		Currency: c.String("currency"),
		Paid:     paid,
		Owed:     owed,
	}
	if err := in.Validate(); err != nil {
		return domain.PaymentInput{}, err
	}
	return in, nil
}

func paymentList(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ac := rt.Session.Context()
	switch {
	case ac.ProjectID == 0:
		return domain.ErrNoActiveProject
	case ac.PayGroupID == 0:
		return domain.ErrNoActiveGroup
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	project, err := rt.Session.GetProjectDetails(ctx, ac.ProjectID, ac.HistoryState)
	if err != nil {
		return err
	}

	group, ok := project.Group(ac.PayGroupID)
	if !ok {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("pay group %d not found in project %d", ac.PayGroupID, ac.ProjectID))
	}
	return printResult(c, rt, group.Payments)
}

func paymentAdd(c *cli.Context) error {
	in, err := paymentInput(c)
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	id, err := rt.Session.AddPayment(ctx, in)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Payment created: %d\n", id)
	return nil
}

func paymentUpdate(c *cli.Context) error {
	id, err := argID(c, 0, "payment ID")
	if err != nil {
		return err
	}
	in, err := paymentInput(c)
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.UpdatePayment(ctx, id, in); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Payment %d updated.\n", id)
	return nil
}

func paymentDelete(c *cli.Context) error {
	id, err := argID(c, 0, "payment ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	if !confirm(c, fmt.Sprintf("Delete payment %d?", id)) {
		return nil
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.DeletePay(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Payment %d deleted.\n", id)
	return nil
}
