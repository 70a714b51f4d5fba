package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/output"
)

// FileCommand returns the attachment subcommand group.
func FileCommand() *cli.Command {
	return &cli.Command{
		Name:  "file",
		Usage: "Manage payment attachments",
		Subcommands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Attach a file to a payment of the active pay group",
				ArgsUsage: "PAYMENT_ID PATH",
				Flags: append(contextFlags(true), &cli.BoolFlag{
					Name:    "quiet",
					Aliases: []string{"q"},
					Usage:   "Do not show upload progress",
				}),
				Action: fileUpload,
			},
			{
				Name:      "get",
				Usage:     "Download the attachment of a payment (PATH - writes to stdout)",
				ArgsUsage: "PAYMENT_ID PATH",
				Flags:     contextFlags(true),
				Action:    fileGet,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove the attachment of a payment",
				ArgsUsage: "PAYMENT_ID",
				Flags:     append(contextFlags(true), forceFlag()),
				Action:    fileRemove,
			},
		},
	}
}

func fileUpload(c *cli.Context) error {
	id, err := argID(c, 0, "payment ID")
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("file path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat attachment: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	name := filepath.Base(path)
	if c.Bool("quiet") {
		err = rt.Session.UploadFile(ctx, id, name, f)
	} else {
		bar := output.NewProgressBar(c.App.ErrWriter, name)
		bar.SetTotal(info.Size())
		err = rt.Session.UploadFile(ctx, id, name, output.NewProgressReader(f, bar))
		if err == nil {
			bar.Finish()
		} else {
			fmt.Fprintln(c.App.ErrWriter)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Uploaded %s to payment %d.\n", name, id)
	return nil
}

func fileGet(c *cli.Context) error {
	id, err := argID(c, 0, "payment ID")
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("output path required")
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if path == "-" {
		_, err := rt.Session.DownloadFile(ctx, id, c.App.Writer)
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	n, err := rt.Session.DownloadFile(ctx, id, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	fmt.Fprintf(c.App.Writer, "Saved attachment of payment %d to %s (%d bytes).\n", id, path, n)
	return nil
}

func fileRemove(c *cli.Context) error {
	id, err := argID(c, 0, "payment ID")
	if err != nil {
		return err
	}

	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	applyContextFlags(c, rt)

	if !confirm(c, fmt.Sprintf("Remove the attachment of payment %d?", id)) {
		return nil
	}

	ctx, cancel := commandContext(c, rt)
	defer cancel()

	if err := rt.Session.RemoveFile(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Attachment of payment %d removed.\n", id)
	return nil
}
