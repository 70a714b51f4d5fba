// Package command provides CLI command definitions for bil.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and interactive shell mode.
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/bil-go/internal/cli/config"
	"github.com/yndnr/bil-go/internal/cli/connection"
	"github.com/yndnr/bil-go/internal/cli/output"
	"github.com/yndnr/bil-go/internal/core/domain"
	"github.com/yndnr/bil-go/internal/core/service"
	"github.com/yndnr/bil-go/internal/infra/buildinfo"
	"github.com/yndnr/bil-go/internal/infra/shutdown"
	"github.com/yndnr/bil-go/internal/telemetry/logger"
	"github.com/yndnr/bil-go/internal/telemetry/metric"
)

// Metadata keys on the cli.App.
const (
	runtimeKey  = "runtime"
	shutdownKey = "shutdown"
)

// Runtime holds what commands share. Single-command mode builds one per
// invocation; the shell keeps one for all of its lines.
type Runtime struct {
	Session    *service.SessionService
	Client     *connection.HTTPClient
	Metrics    *metric.Registry
	Logger     logger.Logger
	Shutdown   *shutdown.Handler
	ConfigPath string

	config    atomic.Pointer[config.CLIConfig]
	overrides map[string]any
	inShell   atomic.Bool
}

// NewRuntime wires the logger, metrics, transport and session for cfg.
// Logs go to logOut.
func NewRuntime(cfg *config.CLIConfig, configPath string, logOut io.Writer) (*Runtime, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	baseURL, err := connection.ResolveBaseURL(cfg.Mode, cfg.Server, cfg.DevPort)
	if err != nil {
		return nil, fmt.Errorf("resolve server: %w", err)
	}

	reg := metric.NewRegistry()
	client := connection.NewHTTPClient(baseURL,
		connection.WithLogger(log),
		connection.WithMetrics(reg),
		connection.WithRateLimit(cfg.RateLimit, 1),
	)
	sess := service.NewSessionService(client,
		service.WithLogger(log),
		service.WithRecorder(reg),
	)
	reg.MustRegister(metric.NewCollector(func() metric.ContextState {
		ac := sess.Context()
		return metric.ContextState{
			ProjectID:  ac.ProjectID,
			PayGroupID: ac.PayGroupID,
			ReadOnly:   ac.ReadOnly,
		}
	}))

	rt := &Runtime{
		Session:    sess,
		Client:     client,
		Metrics:    reg,
		Logger:     log,
		Shutdown:   shutdown.NewHandler(5 * time.Second),
		ConfigPath: configPath,
	}
	rt.config.Store(cfg)

	log.Debug("runtime ready", "base_url", baseURL, "mode", cfg.Mode, "config", configPath)
	return rt, nil
}

// Config returns the current configuration.
func (r *Runtime) Config() *config.CLIConfig {
	return r.config.Load()
}

// SetConfig replaces the configuration used for output and timeouts.
// The transport keeps the server it was built with.
func (r *Runtime) SetConfig(cfg *config.CLIConfig) {
	r.config.Store(cfg)
	logger.SetLevel(cfg.LogLevel)
}

// Reload reads the config file at path, applies the flag overrides given at
// start-up on top of it and installs the result.
func (r *Runtime) Reload(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg, err = config.Merge(cfg, r.overrides)
	if err != nil {
		return err
	}
	r.SetConfig(cfg)
	return nil
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "bil",
		Usage:                "Split bills across projects, pay groups and payments",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             commands(),
		Before:               setup,
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
	}
}

// WithShutdown attaches a shutdown handler so commands can register
// cleanup hooks on it.
func WithShutdown(app *cli.App, h *shutdown.Handler) *cli.App {
	if app.Metadata == nil {
		app.Metadata = map[string]any{}
	}
	app.Metadata[shutdownKey] = h
	return app
}

func commands() []*cli.Command {
	return []*cli.Command{
		ProjectCommand(),
		GroupCommand(),
		PaymentCommand(),
		FileCommand(),
		ConfigCommand(),
		SystemCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "location the client runs at; the API base URL is derived from it",
			EnvVars: []string{"BIL_SERVER"},
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "production (same-origin API) or development (API on dev_port)",
			EnvVars: []string{"BIL_MODE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"BIL_CONFIG"},
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// setup builds the Runtime unless one is already attached (shell lines).
func setup(c *cli.Context) error {
	if _, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return nil
	}

	// .env is optional
	_ = godotenv.Load()

	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	overrides := map[string]any{}
	for _, name := range []string{"server", "mode", "output"} {
		if c.IsSet(name) {
			overrides[name] = c.String(name)
		}
	}
	if c.Bool("verbose") {
		overrides["log_level"] = "debug"
	}
	cfg, err = config.Merge(cfg, overrides)
	if err != nil {
		return err
	}

	rt, err := NewRuntime(cfg, path, c.App.ErrWriter)
	if err != nil {
		return err
	}
	rt.overrides = overrides
	if h, ok := c.App.Metadata[shutdownKey].(*shutdown.Handler); ok {
		rt.Shutdown = h
	}
	c.App.Metadata[runtimeKey] = rt
	return nil
}

// getRuntime retrieves the runtime from the app metadata.
func getRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, errors.New("bil: runtime not initialized")
}

// commandContext derives the context of one command, bounded by the
// configured timeout.
func commandContext(c *cli.Context, rt *Runtime) (context.Context, context.CancelFunc) {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, rt.Logger)
	if d := rt.Config().Timeout; d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// outputFormat returns the --output flag if set, else the configured one.
func outputFormat(c *cli.Context, rt *Runtime) (output.Format, error) {
	if c.IsSet("output") {
		return output.ParseFormat(c.String("output"))
	}
	return output.ParseFormat(rt.Config().Output)
}

// printResult writes data in the selected output format.
func printResult(c *cli.Context, rt *Runtime, data any) error {
	format, err := outputFormat(c, rt)
	if err != nil {
		return err
	}
	return output.NewFormatter(format, c.Bool("wide")).Format(c.App.Writer, data)
}

// argID parses the positional argument at index i as an id.
func argID(c *cli.Context, i int, what string) (int64, error) {
	s := c.Args().Get(i)
	if s == "" {
		return 0, fmt.Errorf("%s required", what)
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("%s must be a positive integer, got %q", what, s))
	}
	return id, nil
}

// applyContextFlags selects the project and pay group named by the
// --project and --group flags. The project is applied first because
// changing it clears the group.
func applyContextFlags(c *cli.Context, rt *Runtime) {
	if c.IsSet("project") {
		rt.Session.SetActiveProject(c.Int64("project"))
	}
	if c.IsSet("group") {
		rt.Session.SetActiveGroup(c.Int64("group"))
	}
}

// contextFlags are the --project and --group flags.
func contextFlags(withGroup bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:    "project",
			Aliases: []string{"p"},
			Usage:   "Project id (default: active project)",
		},
	}
	if withGroup {
		flags = append(flags, &cli.Int64Flag{
			Name:    "group",
			Aliases: []string{"g"},
			Usage:   "Pay group id (default: active pay group)",
		})
	}
	return flags
}

// forceFlag skips the delete confirmation.
func forceFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "force",
		Aliases: []string{"f"},
		Usage:   "Skip confirmation",
	}
}

// confirm asks a yes/no question unless --force is set.
func confirm(c *cli.Context, prompt string) bool {
	if c.Bool("force") {
		return true
	}
	fmt.Fprintf(c.App.Writer, "%s [y/N]: ", prompt)
	line, _ := bufio.NewReader(c.App.Reader).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	fmt.Fprintln(c.App.Writer, "Cancelled.")
	return false
}

// PrintError prints an error message to w.
func PrintError(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "error: "+format+"\n", args...)
}
