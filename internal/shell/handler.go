// Package shell provides the interactive hosts for a gonsole console: an
// ishell-based shell and a live readline loop that validates every keystroke.
package shell

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"

	"gonsole/internal/coercion"
	"gonsole/internal/logger"
	"gonsole/internal/parser"
	"gonsole/internal/render"
	"gonsole/pkg/consoletypes"
)

// Engine is the console a shell drives.
type Engine interface {
	Execute(line string) consoletypes.Invocation
	Propose(line string) consoletypes.Proposal
	Complete(line []rune, pos int) ([][]rune, int)
	Info(key string) (string, error)
	Keys() []string
	Settings() consoletypes.Settings
}

// Handler turns submitted lines into printable output.
type Handler struct {
	engine      Engine
	suggestions int
	logger      *log.Logger
}

// NewHandler creates a handler. suggestions caps the did-you-mean list; a nil
// logger selects the styled "Shell" logger.
func NewHandler(engine Engine, suggestions int, l *log.Logger) *Handler {
	if l == nil {
		l = logger.NewStyledLogger("Shell")
	}
	return &Handler{engine: engine, suggestions: suggestions, logger: l}
}

// Handle executes line and returns the text to print, newline terminated, or
// "" when there is nothing to show. Escape sequences are stripped first so that
// pasted coloured text still resolves.
func (h *Handler) Handle(line string) string {
	out, _ := h.Exec(line)
	return out
}

// Exec is Handle that also returns the invocation, for hosts that derive an
// exit status from it. Blank lines yield a zero Invocation.
func (h *Handler) Exec(line string) (string, consoletypes.Invocation) {
	line = strings.TrimSpace(ansi.Strip(line))
	if line == "" {
		return "", consoletypes.Invocation{}
	}

	inv := h.engine.Execute(line)
	switch inv.Status {
	case consoletypes.StatusInfo:
		return inv.Info + "\n", inv
	case consoletypes.StatusInvoked:
		return h.invoked(inv), inv
	default:
		return h.noMatch(line, inv.Key), inv
	}
}

func (h *Handler) invoked(inv consoletypes.Invocation) string {
	if inv.Err != nil {
		h.logger.Debug("Command failed", "key", inv.Key, "error", inv.Err)
		return fmt.Sprintf("Error: %s\n", inv.Err)
	}

	switch inv.Kind {
	case consoletypes.EntryGetter:
		return fmt.Sprintf("%s = %s\n", inv.Key, formatValue(inv.Results))
	case consoletypes.EntrySetter:
		return fmt.Sprintf("%s = %s\n", inv.Key, formatValue(inv.Args))
	}

	var sb strings.Builder
	for _, r := range inv.Results {
		sb.WriteString(formatValue([]any{r}))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (h *Handler) noMatch(line, key string) string {
	settings := h.engine.Settings()
	if !strings.HasPrefix(line, settings.Prefix) {
		return fmt.Sprintf("Commands start with %q. Type %shelp for a list.\n", settings.Prefix, settings.Prefix)
	}
	if key == "" {
		return ""
	}

	if info, err := h.engine.Info(key); err == nil {
		return fmt.Sprintf("No overload of %s accepts these arguments:\n%s\n", key, info)
	}

	msg := fmt.Sprintf("Unknown command: %s\n", key)
	if matches := render.DidYouMean(key, h.engine.Keys(), h.suggestions); len(matches) > 0 {
		for i, m := range matches {
			matches[i] = settings.Prefix + m
		}
		msg += fmt.Sprintf("Did you mean: %s?\n", strings.Join(matches, ", "))
	}
	return msg
}

func formatValue(values []any) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = s
			continue
		}
		parts[i] = coercion.Literal(consoletypes.Parameter{}, v)
	}
	return strings.Join(parts, " ")
}

// LineFromArgs rebuilds a console line from ishell's split arguments,
// re-quoting arguments that contained spaces.
func LineFromArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}
	if len(args) == 1 {
		return args[0]
	}
	return args[0] + " " + parser.Join(args[1:])
}
