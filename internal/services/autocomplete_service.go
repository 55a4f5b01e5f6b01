package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gonsole/internal/commands"
	"gonsole/internal/parser"
	"gonsole/pkg/consoletypes"
)

// SnapshotSource hands out the registry snapshot to evaluate against.
type SnapshotSource interface {
	Snapshot() *commands.Snapshot
}

// AutoCompleteService evaluates partial lines on every keystroke: it proposes
// the next piece of input and classifies the line. It never invokes handlers or
// accessors and keeps no state between calls, so it is safe for concurrent use.
// It also implements the readline.AutoCompleter interface.
type AutoCompleteService struct {
	source      SnapshotSource
	initialized bool
}

// NewAutoCompleteService creates a new AutoCompleteService instance.
func NewAutoCompleteService(source SnapshotSource) *AutoCompleteService {
	return &AutoCompleteService{source: source}
}

// Name returns the service name "autocomplete" for registration.
func (a *AutoCompleteService) Name() string {
	return "autocomplete"
}

// Initialize checks the service has a registry to read from.
func (a *AutoCompleteService) Initialize() error {
	if a.source == nil {
		return fmt.Errorf("autocomplete service has no registry")
	}
	a.initialized = true
	return nil
}

// Propose evaluates a partial line.
func (a *AutoCompleteService) Propose(line string) consoletypes.Proposal {
	if !a.initialized {
		return consoletypes.Proposal{State: consoletypes.ValidationNone}
	}
	snap := a.source.Snapshot()
	settings := snap.Settings()
	if !strings.HasPrefix(line, settings.Prefix) {
		return consoletypes.Proposal{State: consoletypes.ValidationNone}
	}

	plen := len(settings.Prefix)
	key, tokens := parser.Tokenize(line, plen)
	keyDone := parser.KeyComplete(line, plen)

	if op := settings.InfoOperator; op != "" && strings.HasSuffix(key, op) {
		if text, ok := snap.Info(strings.TrimSuffix(key, op)); ok {
			header, _, _ := strings.Cut(text, "\n")
			return consoletypes.Proposal{Description: header, State: consoletypes.ValidationCommandInfo}
		}
	}

	if !keyDone {
		if p, ok := a.proposeExactKey(snap, key); ok {
			return p
		}
		return a.proposeKey(snap, key)
	}

	boundary := parser.EndsAtBoundary(line, plen)
	switch {
	case key == "":
		return incorrect()
	case snap.IsGetterKey(key):
		return a.proposeMember(snap, snap.Getters(), false, tokens, boundary)
	case snap.IsSetterKey(key):
		return a.proposeMember(snap, snap.Setters(), true, tokens, boundary)
	}

	cmd, ok := snap.ResolveKey(key)
	if !ok {
		return incorrect()
	}
	return a.proposeSignatures(snap, cmd, tokens, boundary)
}

// proposeExactKey handles a fully typed key with no trailing space yet.
func (a *AutoCompleteService) proposeExactKey(snap *commands.Snapshot, key string) (consoletypes.Proposal, bool) {
	settings := snap.Settings()
	switch {
	case snap.IsGetterKey(key) && snap.Getters().Len() > 0:
		return consoletypes.Proposal{Description: memberUsage(settings, settings.GetterKey, false), State: consoletypes.ValidationIncomplete}, true
	case snap.IsSetterKey(key) && snap.Setters().Len() > 0:
		return consoletypes.Proposal{Description: memberUsage(settings, settings.SetterKey, true), State: consoletypes.ValidationIncomplete}, true
	}

	cmd, ok := snap.ResolveKey(key)
	if !ok || !cmd.AutoCompletable() {
		return consoletypes.Proposal{}, false
	}
	for _, sig := range cmd.Signatures {
		if sig.DisableAutoCompletion {
			continue
		}
		ev := parameterWalk{params: sig.Parameters, numeric: sig.NumericBool(settings)}.evaluate()
		return consoletypes.Proposal{Description: settings.Prefix + sig.Usage(), State: ev.state}, true
	}
	return consoletypes.Proposal{}, false
}

// completionSuffix returns what remains of candidate after the prefix typed
// matched case-insensitively. Lower-casing maps rune to rune but may change a
// rune's byte length, so the prefix is measured in runes.
func completionSuffix(candidate, typed string) string {
	n := utf8.RuneCountInString(typed)
	for i := range candidate {
		if n == 0 {
			return candidate[i:]
		}
		n--
	}
	return ""
}

// proposeKey completes a partially typed key up to the next group separator.
func (a *AutoCompleteService) proposeKey(snap *commands.Snapshot, key string) consoletypes.Proposal {
	settings := snap.Settings()
	for _, cand := range snap.FindByPrefix(key) {
		if cand.Command != nil && !cand.Command.AutoCompletable() {
			continue
		}
		rest := completionSuffix(cand.Key, key)
		if i := strings.Index(rest, settings.GroupSeparator); i >= 0 {
			rest = rest[:i+len(settings.GroupSeparator)]
		}

		var desc string
		switch {
		case cand.Command == nil:
			desc = memberUsage(settings, cand.Key, snap.IsSetterKey(cand.Key))
		default:
			desc = keyDescription(settings, cand.Command)
		}
		return consoletypes.Proposal{Description: desc, Completion: rest, State: consoletypes.ValidationIncomplete}
	}
	return incorrect()
}

// proposeSignatures walks each overload in order. The first overload that
// accepts the tokens wins; when it is already complete at a boundary, a later
// overload that takes more parameters lends its hint.
func (a *AutoCompleteService) proposeSignatures(snap *commands.Snapshot, cmd *commands.Command, tokens []string, boundary bool) consoletypes.Proposal {
	settings := snap.Settings()
	var chosen *evaluation
	tried := false

	for _, sig := range cmd.Signatures {
		if sig.DisableAutoCompletion {
			continue
		}
		tried = true
		ev := parameterWalk{
			params:   sig.Parameters,
			tokens:   tokens,
			numeric:  sig.NumericBool(settings),
			boundary: boundary,
			usage:    settings.Prefix + sig.Usage(),
		}.evaluate()
		if ev.failed {
			continue
		}
		if chosen == nil {
			chosen = &ev
			if !boundary || !ev.complete {
				break
			}
			continue
		}
		if !ev.complete {
			chosen.description = ev.description
			chosen.completion = ev.completion
			chosen.state = consoletypes.ValidationOptional
			break
		}
	}

	switch {
	case !tried:
		return consoletypes.Proposal{State: consoletypes.ValidationNone}
	case chosen == nil:
		return incorrect()
	}
	return chosen.proposal()
}

// proposeMember runs the two-level member pass: shortcut first, then Group, then member.
func (a *AutoCompleteService) proposeMember(snap *commands.Snapshot, scope *commands.MemberScope, setter bool, tokens []string, boundary bool) consoletypes.Proposal {
	settings := snap.Settings()
	sep := settings.GroupSeparator
	if scope.Len() == 0 {
		return incorrect()
	}

	if len(tokens) == 0 {
		key := settings.GetterKey
		if setter {
			key = settings.SetterKey
		}
		groups := scope.FindGroupsByPrefix("")
		return consoletypes.Proposal{
			Description: memberUsage(settings, key, setter),
			Completion:  groups[0].Key + sep,
			State:       consoletypes.ValidationIncomplete,
		}
	}

	path := tokens[0]
	if len(tokens) == 1 && !boundary {
		if m, ok := scope.Resolve(path, sep); ok {
			return a.memberValue(settings, m, setter, nil, false, true)
		}
		if ms := scope.FindShortcutsByPrefix(path); len(ms) > 0 {
			return consoletypes.Proposal{
				Description: memberDescription(settings, ms[0]),
				Completion:  completionSuffix(ms[0].Shortcut, path),
				State:       consoletypes.ValidationIncomplete,
			}
		}
		if group, member, found := strings.Cut(path, sep); found {
			if g, ok := scope.Group(group); ok {
				if ms := g.FindByPrefix(member); len(ms) > 0 {
					return consoletypes.Proposal{
						Description: memberDescription(settings, ms[0]),
						Completion:  completionSuffix(ms[0].Key, member),
						State:       consoletypes.ValidationIncomplete,
					}
				}
			}
			return incorrect()
		}
		if gs := scope.FindGroupsByPrefix(path); len(gs) > 0 {
			return consoletypes.Proposal{
				Description: fmt.Sprintf("%s (%d members)", gs[0].Key, len(gs[0].Members)),
				Completion:  completionSuffix(gs[0].Key, path) + sep,
				State:       consoletypes.ValidationIncomplete,
			}
		}
		return incorrect()
	}

	m, ok := scope.Resolve(path, sep)
	if !ok {
		return incorrect()
	}
	return a.memberValue(settings, m, setter, tokens[1:], boundary, false)
}

// memberValue classifies the part after a resolved member path.
func (a *AutoCompleteService) memberValue(settings consoletypes.Settings, m *commands.Member, setter bool, values []string, boundary, typingPath bool) consoletypes.Proposal {
	desc := memberDescription(settings, m)
	if !setter {
		if len(values) > 0 {
			return incorrect()
		}
		return consoletypes.Proposal{Description: desc, State: consoletypes.ValidationValid}
	}

	param := m.Parameter()
	if typingPath {
		state := consoletypes.ValidationIncomplete
		if param.Optional {
			state = consoletypes.ValidationOptional
		}
		return consoletypes.Proposal{Description: desc, State: state}
	}

	ev := parameterWalk{
		params:   []consoletypes.Parameter{param},
		tokens:   values,
		numeric:  settings.NumericBoolProcessing,
		boundary: boundary,
		usage:    desc,
	}.evaluate()
	if ev.failed {
		return incorrect()
	}
	return ev.proposal()
}

// Do implements the readline.AutoCompleter interface. It offers the proposal's
// completion for the text left of the cursor.
func (a *AutoCompleteService) Do(line []rune, pos int) (newLine [][]rune, offset int) {
	if pos > len(line) {
		pos = len(line)
	}
	text := string(line[:pos])
	p := a.Propose(text)
	if p.Completion == "" {
		return nil, 0
	}

	word := 0
	for i := pos - 1; i >= 0 && line[i] != ' '; i-- {
		word++
	}
	return [][]rune{[]rune(p.Completion)}, word
}

func incorrect() consoletypes.Proposal {
	return consoletypes.Proposal{State: consoletypes.ValidationIncorrect}
}

func keyDescription(settings consoletypes.Settings, cmd *commands.Command) string {
	for _, sig := range cmd.Signatures {
		if sig.DisableAutoCompletion {
			continue
		}
		if d := cmd.Description(); d != "" {
			return settings.Prefix + sig.Usage() + " - " + d
		}
		return settings.Prefix + sig.Usage()
	}
	return cmd.Key
}

func memberUsage(settings consoletypes.Settings, key string, setter bool) string {
	usage := fmt.Sprintf("%s%s <Group%sMember|shortcut>", settings.Prefix, key, settings.GroupSeparator)
	if setter {
		usage += " <value>"
	}
	return usage
}

func memberDescription(settings consoletypes.Settings, m *commands.Member) string {
	var sb strings.Builder
	sb.WriteString(m.Path(settings.GroupSeparator))
	if m.Shortcut != "" {
		fmt.Fprintf(&sb, " (%s)", m.Shortcut)
	}
	sb.WriteString(": ")
	sb.WriteString(commands.ParameterUsage(m.Parameter()))
	if m.Description != "" {
		sb.WriteString(" - ")
		sb.WriteString(m.Description)
	}
	return sb.String()
}
