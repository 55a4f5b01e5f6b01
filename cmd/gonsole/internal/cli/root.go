// Package cli provides command-line interface setup for gonsole.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"gonsole/internal/commands/builtin"
	"gonsole/internal/config"
	"gonsole/internal/discovery"
	"gonsole/internal/logger"
	"gonsole/internal/render"
	"gonsole/pkg/console"
)

// App represents the gonsole CLI application
type App struct {
	Loader *config.Loader
	Config config.Config

	configFile string
	testMode   bool

	// quit is called when the Quit command runs; hosts swap it in.
	quit func(delay int, countdown bool)
}

// NewApp creates a new gonsole CLI application
func NewApp() *App {
	return &App{
		Loader: config.NewLoader(),
		Config: config.Default(),
	}
}

// CreateRootCommand creates and configures the root command
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gonsole",
		Short: "Gonsole - an in-process developer console",
		Long: `Gonsole is a developer console that turns typed lines such as "/teleport 1 2 3"
into calls on registered commands and struct members, with live validation and completion.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initConfig()
		},
		RunE: app.runShell,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Config file (default: gonsole.yaml in the working or user config directory)")
	flags.String("log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String("log-file", "", "Write logs to file instead of stderr")
	flags.String("prefix", "", "Command prefix [default: /]")
	flags.String("style", "", "Render style (auto|dark|light|notty|ascii)")
	flags.BoolVar(&app.testMode, "test-mode", false, "Run in deterministic test mode")

	bindings := map[string]string{
		"log-level": "log.level",
		"log-file":  "log.file",
		"prefix":    "console.prefix",
		"style":     "shell.style",
	}
	for flag, key := range bindings {
		if err := app.Loader.Viper().BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	app.addShellCommand(rootCmd)
	app.addExecCommands(rootCmd)
	app.addListCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

func (app *App) initConfig() error {
	if app.configFile != "" {
		app.Loader.SetConfigFile(app.configFile)
	}
	cfg, err := app.Loader.Load()
	if err != nil {
		return err
	}
	app.Config = cfg

	if err := logger.Configure(cfg.Log.Level, cfg.Log.File, app.testMode); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	logger.Debug("Configuration loaded", "file", app.Loader.ConfigFileUsed(), "prefix", cfg.Console.Prefix)
	return nil
}

// session is a console populated with the demo command set.
type session struct {
	console  *console.Console
	world    *builtin.World
	renderer *render.Renderer
}

func (app *App) newSession(ctx context.Context, out io.Writer) (*session, error) {
	renderer, err := render.New(render.Options{Style: app.Config.Shell.Style, Width: app.Config.Shell.Width})
	if err != nil {
		return nil, err
	}

	world := builtin.NewWorld()
	host := &builtin.Host{
		Out:   out,
		World: world,
		OnQuit: func(delay int, countdown bool) {
			if app.quit != nil {
				app.quit(delay, countdown)
			}
		},
	}
	provider, err := host.Provider()
	if err != nil {
		return nil, fmt.Errorf("failed to build command provider: %w", err)
	}

	opts := []console.Option{
		console.WithSettings(app.Config.Console),
		console.WithLogger(logger.Logger),
		console.WithProvider(provider),
	}
	if app.testMode {
		opts = append(opts, console.WithScanIDs(discovery.SequentialIDs()))
	}
	c, err := console.New(opts...)
	if err != nil {
		return nil, err
	}
	host.Help = c.Info

	if _, err := c.Rescan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load commands: %w", err)
	}
	return &session{console: c, world: world, renderer: renderer}, nil
}
