package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gonsole/internal/logger"
	"gonsole/internal/shell"
	"gonsole/internal/version"
	"gonsole/pkg/consoletypes"
)

// ErrNotInvoked is returned by exec and batch when a line ran nothing or failed.
var ErrNotInvoked = errors.New("line was not invoked")

func (app *App) addShellCommand(rootCmd *cobra.Command) {
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Start interactive shell mode",
		Long: `Start the interactive gonsole shell. With --live every keystroke is validated
and the line is coloured by its state; TAB completes in both modes.`,
		Args: cobra.NoArgs,
		RunE: app.runShell,
	}
	shellCmd.Flags().Bool("live", false, "Validate and colour the line while typing")
	rootCmd.AddCommand(shellCmd)
}

func (app *App) runShell(cmd *cobra.Command, _ []string) error {
	s, err := app.newSession(cmd.Context(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	logger.Info("Starting gonsole", "version", version.Version)

	prefix := app.Config.Console.Prefix
	sh := shell.New(s.console, s.renderer, shell.Options{
		Prompt:      app.Config.Shell.Prompt,
		HistoryFile: app.Config.Shell.HistoryFile,
		Suggestions: app.Config.Shell.Suggestions,
		Banner: fmt.Sprintf("%s\nType '%shelp' for commands, 'command%s' for details or '%sQuit' to leave.",
			version.Short(), prefix, app.Config.Console.InfoOperator, prefix),
	}, logger.NewStyledLogger("Shell"))

	app.quit = func(delay int, _ bool) {
		if delay <= 0 {
			sh.Stop()
			return
		}
		time.AfterFunc(time.Duration(delay)*time.Second, sh.Stop)
	}

	live, _ := cmd.Flags().GetBool("live")
	if live {
		return sh.RunLive()
	}
	sh.Run()
	return nil
}

func (app *App) addExecCommands(rootCmd *cobra.Command) {
	execCmd := &cobra.Command{
		Use:   "exec <line...>",
		Short: "Execute a single console line",
		Long: `Execute one console line and print its result. The line may be given as one
quoted argument or as separate words; words containing spaces are re-quoted.`,
		Example: `  gonsole exec "/teleport 1 2 3"
  gonsole exec /add 1 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			h := shell.NewHandler(s.console, app.Config.Shell.Suggestions, nil)
			out, inv := h.Exec(shell.LineFromArgs(args))
			fmt.Fprint(cmd.OutOrStdout(), out)
			return invocationError(inv)
		},
	}

	proposeCmd := &cobra.Command{
		Use:   "propose <partial line>",
		Short: "Show the completion and validation state for a partial line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			line := args[0]
			fmt.Fprintln(cmd.OutOrStdout(), s.renderer.Proposal(line, s.console.Propose(line)))
			return nil
		},
	}

	batchCmd := &cobra.Command{
		Use:   "batch <script>",
		Short: "Execute console lines from a file",
		Long: `Execute every line of a script file in order. Blank lines and lines starting
with '#' are skipped. Execution continues past failures; the command fails if any line did.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runBatch(cmd, shell.NewHandler(s.console, app.Config.Shell.Suggestions, nil), args[0])
		},
	}

	rootCmd.AddCommand(execCmd, proposeCmd, batchCmd)
}

func runBatch(cmd *cobra.Command, h *shell.Handler, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer file.Close()

	failed := 0
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out, inv := h.Exec(line)
		fmt.Fprint(cmd.OutOrStdout(), out)
		if err := invocationError(inv); err != nil {
			logger.Debug("Script line failed", "line", n, "error", err)
			failed++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d script line(s) failed: %w", failed, ErrNotInvoked)
	}
	return nil
}

func invocationError(inv consoletypes.Invocation) error {
	switch {
	case inv.Status == consoletypes.StatusNoMatch:
		return ErrNotInvoked
	case inv.Err != nil:
		return fmt.Errorf("%w: %w", ErrNotInvoked, inv.Err)
	}
	return nil
}

func (app *App) addListCommand(rootCmd *cobra.Command) {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List commands and members",
		Long: `List the registered command signatures, getters and setters. Output formats are
text, markdown, yaml and json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd.Context(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			kinds, _ := cmd.Flags().GetStringSlice("kind")
			contains, _ := cmd.Flags().GetString("contains")
			all, _ := cmd.Flags().GetBool("all")

			filter := consoletypes.ListFilter{Contains: contains, IncludeUnlisted: all}
			for _, name := range kinds {
				kind, err := consoletypes.ParseEntryKind(name)
				if err != nil {
					return err
				}
				filter.Kinds = append(filter.Kinds, kind)
			}

			entries, err := s.console.List(filter)
			if err != nil {
				return err
			}
			return s.renderer.Export(cmd.OutOrStdout(), entries, format)
		},
	}

	listCmd.Flags().StringP("format", "f", "text", "Output format (text|markdown|yaml|json)")
	listCmd.Flags().StringSlice("kind", nil, "Only list these kinds (command,getter,setter)")
	listCmd.Flags().String("contains", "", "Only list keys containing this text")
	listCmd.Flags().Bool("all", false, "Include unlisted commands")
	rootCmd.AddCommand(listCmd)
}
