package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonsole/pkg/consoletypes"
)

var sampleEntries = []consoletypes.ListEntry{
	{Kind: consoletypes.EntryCommand, Key: "Quit", Usage: "/Quit [int secondsDelay = 0]", Description: "Quits the application", Priority: 1000},
	{Kind: consoletypes.EntryCommand, Key: "echo", Usage: "/echo <string text>"},
	{Kind: consoletypes.EntryGetter, Key: "Stats.fps", Usage: "/get Stats.fps", Shortcut: "fps", Description: "a|b"},
}

func newPlainRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(Options{Style: "notty", Width: 100})
	require.NoError(t, err)
	require.True(t, r.Plain())
	return r
}

func TestNew_UnknownStyle(t *testing.T) {
	_, err := New(Options{Style: "no-such-style"})
	assert.Error(t, err)
}

func TestListingMarkdown(t *testing.T) {
	md := ListingMarkdown(sampleEntries)

	assert.Contains(t, md, "## Commands")
	assert.Contains(t, md, "## Getters")
	assert.NotContains(t, md, "## Setters")
	assert.Contains(t, md, "| `/Quit [int secondsDelay = 0]` | Quits the application |")
	assert.Contains(t, md, "| `/get Stats.fps` (fps) | a\\|b |")
	assert.Less(t, strings.Index(md, "## Commands"), strings.Index(md, "## Getters"))

	assert.Equal(t, "_No commands._\n", ListingMarkdown(nil))
}

func TestRenderer_ListingText(t *testing.T) {
	r := newPlainRenderer(t)
	text := r.ListingText(sampleEntries)
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "/Quit [int secondsDelay = 0]  Quits the application", lines[0])
	assert.Equal(t, "/echo <string text>", lines[1])
	assert.Equal(t, strings.Index(lines[0], "Quits"), strings.Index(lines[2], "a|b"))
}

func TestRenderer_Export(t *testing.T) {
	r := newPlainRenderer(t)

	tests := []struct {
		format   string
		contains []string
	}{
		{format: "yaml", contains: []string{"kind: command", "usage: /echo <string text>", "kind: getter", "shortcut: fps"}},
		{format: "json", contains: []string{`"kind": "command"`, `"key": "Stats.fps"`, `"priority": 1000`}},
		{format: "text", contains: []string{"/echo <string text>"}},
		{format: "markdown", contains: []string{"Quits the application"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, r.Export(&buf, sampleEntries, tt.format))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}

	var buf bytes.Buffer
	assert.EqualError(t, r.Export(&buf, sampleEntries, "xml"), `unknown listing format "xml"`)
}

func TestRenderer_Markdown_Empty(t *testing.T) {
	r := newPlainRenderer(t)
	_, err := r.Markdown("  ")
	assert.Error(t, err)
}

func TestRenderer_Proposal(t *testing.T) {
	r := newPlainRenderer(t)

	tests := []struct {
		name     string
		line     string
		proposal consoletypes.Proposal
		want     string
	}{
		{
			name:     "outside console",
			line:     "hello",
			proposal: consoletypes.Proposal{State: consoletypes.ValidationNone},
			want:     "hello",
		},
		{
			name:     "completion and description",
			line:     "/qu",
			proposal: consoletypes.Proposal{Completion: "it", State: consoletypes.ValidationIncomplete, Description: "Quits the application"},
			want:     "/qu[it]  (Incomplete) Quits the application",
		},
		{
			name:     "state only",
			line:     "/quit 5 true ",
			proposal: consoletypes.Proposal{State: consoletypes.ValidationValid},
			want:     "/quit 5 true   (Valid)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Proposal(tt.line, tt.proposal))
		})
	}
}

func TestDidYouMean(t *testing.T) {
	keys := []string{"Quit", "teleport", "get", "set", "quit"}

	tests := []struct {
		input string
		limit int
		want  []string
	}{
		{input: "qit", limit: 1, want: []string{"Quit"}},
		{input: "QIT", limit: 1, want: []string{"Quit"}},
		{input: "telport", limit: 3, want: []string{"teleport"}},
		{input: "xyzzy", limit: 3, want: []string{}},
		{input: "", limit: 3, want: nil},
		{input: "quit", limit: 0, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := DidYouMean(tt.input, keys, tt.limit)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_PaintPlain(t *testing.T) {
	r := newPlainRenderer(t)
	assert.Equal(t, "/quit", r.Paint("/quit", consoletypes.ValidationIncorrect))
	assert.Equal(t, "hi", r.Paint("hi", consoletypes.ValidationNone))
}
