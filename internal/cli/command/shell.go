package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/config"
	"github.com/yndnr/bil-go/internal/cli/repl"
	"github.com/yndnr/bil-go/internal/infra/confloader"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell that keeps the active project and pay group between commands",
		Description: "Each line is run as a bil command against one session. Global flags that " +
			"shape the session (--server, --mode, --config) are read once at start; --output " +
			"and --wide apply per line.",
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	rt, err := getRuntime(c)
	if err != nil {
		return err
	}
	if !rt.inShell.CompareAndSwap(false, true) {
		return errors.New("already in a shell")
	}
	defer rt.inShell.Store(false)

	stopWatch := watchConfig(rt)
	defer stopWatch()

	in := bufio.NewReader(c.App.Reader)
	historyFile := rt.Config().HistoryFile
	if historyFile == "" {
		historyFile = config.DefaultHistoryPath()
	}
	history := repl.NewHistory(historyFile)
	rt.Shutdown.OnShutdown(func(context.Context) error {
		return history.Save()
	})

	exec := func(ctx context.Context, args []string) error {
		line := &cli.App{
			Name:           c.App.Name,
			Usage:          c.App.Usage,
			Flags:          globalFlags(),
			Commands:       commands(),
			Before:         setup,
			Metadata:       c.App.Metadata,
			Reader:         in,
			Writer:         c.App.Writer,
			ErrWriter:      c.App.ErrWriter,
			ExitErrHandler: func(*cli.Context, error) {},
			HideVersion:    true,
		}
		return line.RunContext(ctx, append([]string{c.App.Name}, args...))
	}

	fmt.Fprintf(c.App.Writer, "bil shell against %s. Type 'help' for commands, 'exit' to leave.\n", rt.Client.BaseURL())

	r := repl.New(exec,
		repl.WithIO(in, c.App.Writer),
		repl.WithHistory(history),
		repl.WithCompleter(repl.NewCompleter(commandWords(commands())...)),
		repl.WithPrompt(func() string { return shellPrompt(rt) }),
	)
	err = r.Run(c.Context)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// shellPrompt shows the active context, e.g. "bil[p1/g2 ro]> ".
func shellPrompt(rt *Runtime) string {
	ac := rt.Session.Context()
	if ac.ProjectID == 0 && ac.PayGroupID == 0 {
		return "bil> "
	}

	var b strings.Builder
	b.WriteString("bil[")
	if ac.ProjectID != 0 {
		fmt.Fprintf(&b, "p%d", ac.ProjectID)
	}
	if ac.PayGroupID != 0 {
		if ac.ProjectID != 0 {
			b.WriteByte('/')
		}
		fmt.Fprintf(&b, "g%d", ac.PayGroupID)
	}
	if ac.ReadOnly {
		b.WriteString(" ro")
	}
	b.WriteString("]> ")
	return b.String()
}

// watchConfig reloads the config file on change and applies its output,
// timeout and log settings. It returns a function stopping the watch.
func watchConfig(rt *Runtime) func() {
	if _, err := os.Stat(filepath.Dir(rt.ConfigPath)); err != nil {
		return func() {}
	}

	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Logger))
	if err != nil {
		rt.Logger.Warn("config watch disabled", "error", err)
		return func() {}
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		rt.Logger.Debug("config watch disabled", "path", rt.ConfigPath, "error", err)
		_ = w.Stop()
		return func() {}
	}

	w.OnChange(func(path string) {
		if err := rt.Reload(path); err != nil {
			rt.Logger.Warn("config reload failed", "path", path, "error", err)
			return
		}
		rt.Logger.Info("config reloaded", "path", path)
	})
	w.StartAsync()

	return func() { _ = w.Stop() }
}

// commandWords lists every command and alias, alone and followed by each
// subcommand name, plus the shell built-ins.
func commandWords(cmds []*cli.Command) []string {
	var words []string
	for _, cmd := range cmds {
		for _, name := range cmd.Names() {
			words = append(words, name)
			for _, sub := range cmd.Subcommands {
				words = append(words, name+" "+sub.Name)
			}
		}
	}
	return append(words, "help", "history", "exit", "quit")
}
