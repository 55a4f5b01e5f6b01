package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gonsole/pkg/consoletypes"
)

type proposalStyles struct {
	completion lipgloss.Style
	hint       lipgloss.Style
	states     map[consoletypes.ValidationState]lipgloss.Style
}

func newProposalStyles() proposalStyles {
	state := func(color string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	}
	return proposalStyles{
		completion: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		hint:       lipgloss.NewStyle().Italic(true),
		states: map[consoletypes.ValidationState]lipgloss.Style{
			consoletypes.ValidationValid:       state("10"),
			consoletypes.ValidationOptional:    state("12"),
			consoletypes.ValidationIncomplete:  state("11"),
			consoletypes.ValidationIncorrect:   state("9"),
			consoletypes.ValidationCommandInfo: state("13"),
		},
	}
}

// Proposal renders line with its ghosted completion followed by the state and
// description. Lines outside the console (state None) render unchanged.
func (r *Renderer) Proposal(line string, p consoletypes.Proposal) string {
	if p.State == consoletypes.ValidationNone {
		return line
	}

	var sb strings.Builder
	sb.WriteString(line)
	if p.Completion != "" {
		if r.plain {
			sb.WriteString("[" + p.Completion + "]")
		} else {
			sb.WriteString(r.styles.completion.Render(p.Completion))
		}
	}

	sb.WriteString("  ")
	label := "(" + p.State.String() + ")"
	if r.plain {
		sb.WriteString(label)
	} else {
		sb.WriteString(r.styles.states[p.State].Render(label))
	}

	if p.Description != "" {
		sb.WriteString(" ")
		if r.plain {
			sb.WriteString(p.Description)
		} else {
			sb.WriteString(r.styles.hint.Render(p.Description))
		}
	}
	return sb.String()
}

// Paint colours text with the colour of state. Plain renderers and the None
// state return text unchanged.
func (r *Renderer) Paint(text string, state consoletypes.ValidationState) string {
	style, ok := r.styles.states[state]
	if r.plain || !ok {
		return text
	}
	return style.UnsetBold().Render(text)
}
