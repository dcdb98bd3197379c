// Package cli is the taskr command line. The root command opens the TUI; the
// subcommands work on the stored session without it.
package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/taskr/internal/api"
	"github.com/sadopc/taskr/internal/config"
	"github.com/sadopc/taskr/internal/tui"
)

// RootCommand is the base command when called without any subcommands.
type RootCommand struct {
	cmd     *cobra.Command
	version string

	configPath string
	apiURL     string
	debug      bool

	env *Env
}

// NewRootCommand creates the root cobra command with global flags.
func NewRootCommand(version string) *RootCommand {
	r := &RootCommand{version: version}

	r.cmd = &cobra.Command{
		Use:   "taskr",
		Short: "A terminal client for your task list",
		Long: `taskr is a terminal client for a remote task list.

Run it without arguments to open the interactive UI: log in, browse your
tasks page by page, create tasks and mark them done.

CONFIGURATION:
  Settings are read from config.toml in the config directory and can be
  overridden by environment variables and flags, in increasing priority.

    TASKR_API_URL                          Task server base URL
    TASKR_DEBUG                            Log at debug level`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return r.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runTUI()
		},
	}

	r.addGlobalFlags()
	r.addSubcommands()
	return r
}

// Execute runs the command line and releases the environment afterwards.
func (r *RootCommand) Execute() error {
	defer r.close()
	return r.cmd.Execute()
}

func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()
	flags.StringVar(&r.configPath, "config", config.DefaultPath(), "Path to config.toml")
	flags.StringVar(&r.apiURL, "api-url", "", "Task server base URL (overrides TASKR_API_URL)")
	flags.BoolVar(&r.debug, "debug", false, "Log at debug level (overrides TASKR_DEBUG)")
}

func (r *RootCommand) addSubcommands() {
	r.cmd.AddCommand(
		r.newStatusCommand(),
		r.newLogoutCommand(),
		r.newExportCommand(),
		r.newVersionCommand(),
	)
}

// loadConfig reads the config file and applies flag overrides on top.
func (r *RootCommand) loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrCreate(r.configPath)
	if err != nil {
		return cfg, err
	}
	if r.apiURL != "" {
		cfg.APIURL = r.apiURL
	}
	if r.debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

func (r *RootCommand) open(opts ...api.Option) error {
	if r.env != nil {
		return nil
	}
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	r.env, err = OpenEnv(cfg, opts...)
	return err
}

func (r *RootCommand) close() {
	if r.env == nil {
		return
	}
	if err := r.env.Close(); err != nil {
		fmt.Fprintf(r.cmd.ErrOrStderr(), "warning: %v\n", err)
	}
	r.env = nil
}

// runTUI rebuilds the API client with a hook that routes session expiry into
// the running program.
func (r *RootCommand) runTUI() error {
	var p *tea.Program
	env := r.env
	env.API = api.New(env.Config.APIURL, env.Session,
		api.WithLogger(env.Log),
		api.WithTimeout(env.Config.RequestTimeout.Duration),
		api.WithSessionExpiredHandler(func() {
			if p != nil {
				p.Send(tui.SessionExpiredMsg{})
			}
		}),
	)

	app := tui.NewApp(tui.Config{
		Backend:  env.API,
		Session:  env.Session,
		Store:    env.Store,
		Logger:   env.Log,
		PageSize: env.Config.PageSize,
		APIURL:   env.Config.APIURL,
	})
	p = tea.NewProgram(app, tea.WithAltScreen())

	env.Log.Info("starting", "version", r.version, "logged_in", env.Session.LoggedIn())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
