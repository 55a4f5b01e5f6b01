package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"gonsole/pkg/consoletypes"
)

// Listing export formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatYAML     = "yaml"
	FormatJSON     = "json"
)

// ListingMarkdown builds a markdown document with one table per entry kind.
func ListingMarkdown(entries []consoletypes.ListEntry) string {
	var sb strings.Builder
	for _, kind := range []consoletypes.EntryKind{consoletypes.EntryCommand, consoletypes.EntryGetter, consoletypes.EntrySetter} {
		rows := filterKind(entries, kind)
		if len(rows) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s\n\n", sectionTitle(kind))
		sb.WriteString("| Usage | Description |\n|---|---|\n")
		for _, e := range rows {
			usage := "`" + e.Usage + "`"
			if e.Shortcut != "" {
				usage += " (" + escapeCell(e.Shortcut) + ")"
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", usage, escapeCell(e.Description))
		}
	}
	if sb.Len() == 0 {
		return "_No commands._\n"
	}
	return sb.String()
}

// Listing renders entries as terminal markdown.
func (r *Renderer) Listing(entries []consoletypes.ListEntry) (string, error) {
	return r.Markdown(ListingMarkdown(entries))
}

// ListingText renders entries as aligned plain text, usage then description.
func (r *Renderer) ListingText(entries []consoletypes.ListEntry) string {
	widest := 0
	for _, e := range entries {
		widest = max(widest, ansi.StringWidth(e.Usage))
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Usage)
		if e.Description != "" {
			sb.WriteString(strings.Repeat(" ", widest-ansi.StringWidth(e.Usage)+2))
			sb.WriteString(e.Description)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Export writes entries to w in the given format.
func (r *Renderer) Export(w io.Writer, entries []consoletypes.ListEntry, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		_, err := io.WriteString(w, r.ListingText(entries))
		return err
	case FormatMarkdown, "md":
		out, err := r.Listing(entries)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode listing as yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode listing as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown listing format %q", format)
	}
}

func filterKind(entries []consoletypes.ListEntry, kind consoletypes.EntryKind) []consoletypes.ListEntry {
	var out []consoletypes.ListEntry
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func sectionTitle(kind consoletypes.EntryKind) string {
	switch kind {
	case consoletypes.EntryGetter:
		return "Getters"
	case consoletypes.EntrySetter:
		return "Setters"
	default:
		return "Commands"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
