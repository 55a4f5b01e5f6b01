package services

import (
	"strconv"
	"strings"

	"gonsole/internal/coercion"
	"gonsole/pkg/consoletypes"
)

// stateTracker holds the validation state of one evaluation. Once Optional is
// set it is never replaced.
type stateTracker struct {
	state  consoletypes.ValidationState
	sticky bool
}

func (t *stateTracker) set(s consoletypes.ValidationState) {
	if t.sticky {
		return
	}
	t.state = s
	if s == consoletypes.ValidationOptional {
		t.sticky = true
	}
}

// evaluation is the outcome of walking one parameter list against typed tokens.
type evaluation struct {
	failed      bool
	state       consoletypes.ValidationState
	description string
	completion  string
	// complete is set when every parameter was bound by a typed token and
	// nothing remains to describe.
	complete bool
}

func (e evaluation) proposal() consoletypes.Proposal {
	return consoletypes.Proposal{Description: e.description, Completion: e.completion, State: e.state}
}

// parameterWalk evaluates typed tokens against a parameter list the same way
// the dispatcher binds them, without invoking anything.
type parameterWalk struct {
	params   []consoletypes.Parameter
	tokens   []string
	numeric  bool
	boundary bool
	usage    string
}

func (w parameterWalk) evaluate() evaluation {
	var tr stateTracker
	cursor := 0
	lastTok := len(w.tokens) - 1
	next := len(w.params)
	focus, component := -1, -1
	completion := ""
	partial, midComposite := false, false

	for i, p := range w.params {
		if cursor >= len(w.tokens) {
			next = i
			break
		}
		last := i == len(w.params)-1
		res, err := coercion.Coerce(w.tokens, cursor, coercion.Target{Param: p, Last: last, NumericBool: w.numeric})
		if err == nil {
			end := cursor + res.Consumed - 1
			kind := p.Kind()
			short := kind.IsComposite() && res.Consumed < kind.Arity()
			midComposite = midComposite || short

			switch {
			case !w.boundary && end == lastTok:
				focus = i
				if short {
					component = res.Consumed - 1
				} else if suffix, exact, ok := matchCandidate(p, w.tokens[lastTok]); ok && !exact {
					completion, partial = suffix, true
				}
			case w.boundary && short:
				focus = i
				component = res.Consumed
				completion = remainingComponents(p, res.Consumed)
			}
			cursor += res.Consumed
			continue
		}

		typing := !w.boundary && cursor == lastTok
		if typing {
			if suffix, _, ok := matchCandidate(p, w.tokens[cursor]); ok {
				focus, completion, partial = i, suffix, true
				cursor++
				continue
			}
			if isNumericPrefix(p, w.tokens[cursor]) {
				focus, partial = i, true
				if p.Kind().IsComposite() {
					component = 0
				}
				cursor++
				continue
			}
		}
		if p.Optional {
			tr.set(consoletypes.ValidationOptional)
			if typing && focus < 0 {
				focus = i
			}
			continue
		}
		if tr.sticky {
			next = i
			break
		}
		return evaluation{failed: true}
	}

	if cursor < len(w.tokens) && !tr.sticky {
		return evaluation{failed: true}
	}

	switch {
	case partial:
		tr.set(consoletypes.ValidationIncomplete)
	case next >= len(w.params):
		if midComposite {
			tr.set(consoletypes.ValidationOptional)
		} else {
			tr.set(consoletypes.ValidationValid)
		}
	case w.params[next].Optional:
		tr.set(consoletypes.ValidationOptional)
	default:
		tr.set(consoletypes.ValidationIncomplete)
	}

	ev := evaluation{state: tr.state, completion: completion}
	switch {
	case focus >= 0:
		ev.description = describeParameter(w.params[focus], component)
	case w.boundary && next < len(w.params):
		p := w.params[next]
		first := -1
		if p.Kind().IsComposite() {
			first = 0
		}
		ev.description = describeParameter(p, first)
		ev.completion = initialCompletion(p)
	default:
		ev.description = w.usage
	}
	ev.complete = next >= len(w.params) && !midComposite && !partial
	return ev
}

// candidates lists the literal values a parameter can be completed to.
func candidates(p consoletypes.Parameter) ([]string, bool) {
	switch {
	case p.Kind() == consoletypes.KindEnum:
		names := make([]string, len(p.Enum))
		for i, ev := range p.Enum {
			names[i] = ev.Name
		}
		return names, false
	case p.Suggestions != nil && len(p.Suggestions.Values) > 0:
		return p.Suggestions.Values, p.Suggestions.CaseSensitive
	case p.Kind() == consoletypes.KindBool:
		return []string{"true", "false"}, false
	}
	return nil, false
}

// matchCandidate matches a partially typed token against the parameter's
// candidates. An exact match wins over the first prefix match.
func matchCandidate(p consoletypes.Parameter, token string) (suffix string, exact bool, ok bool) {
	values, caseSensitive := candidates(p)
	if len(values) == 0 {
		return "", false, false
	}
	norm := func(s string) string {
		if caseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	typed := norm(token)
	for _, v := range values {
		if norm(v) == typed {
			return "", true, true
		}
	}
	for _, v := range values {
		if strings.HasPrefix(norm(v), typed) {
			return completionSuffix(v, token), false, true
		}
	}
	return "", false, false
}

// isNumericPrefix reports whether token is the start of a number not yet parseable,
// such as a lone sign or an opening parenthesis.
func isNumericPrefix(p consoletypes.Parameter, token string) bool {
	switch p.Kind() {
	case consoletypes.KindInt, consoletypes.KindUint, consoletypes.KindFloat,
		consoletypes.KindVector2, consoletypes.KindVector3, consoletypes.KindVector4,
		consoletypes.KindColor, consoletypes.KindColor32:
	default:
		return false
	}
	return token != "" && strings.Trim(token, "()+-.,") == ""
}

// initialCompletion proposes a value for a parameter nothing has been typed for:
// its first suggestion, else its default as a bare literal.
func initialCompletion(p consoletypes.Parameter) string {
	if p.Suggestions != nil && len(p.Suggestions.Values) > 0 {
		return p.Suggestions.Values[0]
	}
	if !p.Optional {
		return ""
	}
	return defaultLiteral(p)
}

// remainingComponents renders the default components after the first consumed ones.
func remainingComponents(p consoletypes.Parameter, consumed int) string {
	if p.Default == nil {
		return ""
	}
	v, err := coercion.DefaultValue(p)
	if err != nil {
		return ""
	}
	components := coercion.Components(v.Interface())
	if consumed >= len(components) {
		return ""
	}
	parts := make([]string, 0, len(components)-consumed)
	for _, c := range components[consumed:] {
		parts = append(parts, strconv.FormatFloat(c, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

func defaultLiteral(p consoletypes.Parameter) string {
	v, err := coercion.DefaultValue(p)
	if err != nil {
		return ""
	}
	return coercion.Literal(p, v.Interface())
}

// describeParameter builds the hint text for p from its hint metadata. component
// selects a composite component label, or -1 for none.
func describeParameter(p consoletypes.Parameter, component int) string {
	show := consoletypes.ShowAll
	text := ""
	if p.Hint != nil {
		show, text = p.Hint.Show, p.Hint.Text
	}

	var head []string
	if show.Has(consoletypes.ShowType) {
		head = append(head, coercion.TypeName(p))
	}
	if show.Has(consoletypes.ShowName) && p.Name != "" {
		head = append(head, p.Name)
	}
	desc := strings.Join(head, " ")

	if component >= 0 {
		if label := coercion.ComponentLabel(p.Kind(), component); label != "" {
			if desc != "" {
				desc += ", "
			}
			desc += label
		}
	}
	if text != "" {
		if desc != "" {
			desc += ": "
		}
		desc += text
	}
	if show.Has(consoletypes.ShowDefault) && p.Optional {
		if lit := defaultLiteral(p); lit != "" {
			desc += " (default " + lit + ")"
		}
	}
	return desc
}
