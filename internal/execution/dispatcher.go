package execution

import (
	"reflect"
	"strings"

	"github.com/charmbracelet/log"

	"gonsole/internal/coercion"
	"gonsole/internal/commands"
	"gonsole/internal/logger"
	"gonsole/internal/parser"
	"gonsole/pkg/consoletypes"
)

// SnapshotSource hands out the registry snapshot to dispatch against.
type SnapshotSource interface {
	Snapshot() *commands.Snapshot
}

// Dispatcher executes finalized command lines. It is safe for concurrent use.
type Dispatcher struct {
	source SnapshotSource
	logger *log.Logger
}

// NewDispatcher creates a dispatcher over source. A nil logger selects the
// styled "Dispatcher" component logger.
func NewDispatcher(source SnapshotSource, l *log.Logger) *Dispatcher {
	if l == nil {
		l = logger.NewStyledLogger("Dispatcher")
	}
	return &Dispatcher{source: source, logger: l}
}

// dispatch holds the per-call state of one Execute.
type dispatch struct {
	phase    Phase
	line     string
	snap     *commands.Snapshot
	settings consoletypes.Settings
	key      string
	tokens   []string
}

// Execute resolves line and invokes the first matching signature or member
// accessor. Unresolvable lines yield StatusNoMatch and never an error; handler
// errors and panics are reported in Invocation.Err.
func (d *Dispatcher) Execute(line string) consoletypes.Invocation {
	snap := d.source.Snapshot()
	st := &dispatch{phase: PhaseReceived, line: line, snap: snap, settings: snap.Settings()}
	d.logger.Debug("Dispatch started", "line", line)

	result := d.run(st)
	d.logger.Debug("Dispatch finished", "key", st.key, "state", st.phase.String(), "status", result.Status.String())
	return result
}

func (d *Dispatcher) run(st *dispatch) consoletypes.Invocation {
	st.phase = PhaseParsing
	prefix := st.settings.Prefix
	if !strings.HasPrefix(st.line, prefix) {
		return d.noMatch(st)
	}
	st.key, st.tokens = parser.Tokenize(st.line, len(prefix))
	if st.key == "" {
		return d.noMatch(st)
	}

	st.phase = PhaseResolving
	if op := st.settings.InfoOperator; op != "" && strings.HasSuffix(st.key, op) {
		base := strings.TrimSuffix(st.key, op)
		if text, ok := st.snap.Info(base); ok {
			st.phase = PhaseCompleted
			return consoletypes.Invocation{Status: consoletypes.StatusInfo, Key: base, Info: text}
		}
		return d.noMatch(st)
	}

	switch {
	case st.snap.IsGetterKey(st.key):
		return d.get(st)
	case st.snap.IsSetterKey(st.key):
		return d.set(st)
	}

	cmd, ok := st.snap.ResolveKey(st.key)
	if !ok {
		return d.noMatch(st)
	}

	st.phase = PhaseBinding
	for _, sig := range cmd.Signatures {
		args, ok := Bind(sig, st.tokens, st.settings)
		if !ok {
			d.logger.Debug("Signature rejected", "key", cmd.Key, "usage", sig.Usage())
			continue
		}

		st.phase = PhaseInvoking
		results, err := sig.Invoke(args)
		if err != nil {
			d.logger.Debug("Handler returned error", "key", cmd.Key, "error", err)
		}
		st.phase = PhaseCompleted
		return consoletypes.Invocation{
			Status:  consoletypes.StatusInvoked,
			Kind:    consoletypes.EntryCommand,
			Key:     cmd.Key,
			Args:    interfaces(args),
			Results: results,
			Err:     err,
		}
	}
	return d.noMatch(st)
}

func (d *Dispatcher) get(st *dispatch) consoletypes.Invocation {
	if len(st.tokens) == 0 {
		return d.noMatch(st)
	}
	sep := st.settings.GroupSeparator
	m, ok := st.snap.Getters().Resolve(st.tokens[0], sep)
	if !ok {
		return d.noMatch(st)
	}

	st.phase = PhaseInvoking
	value, err := m.Read()
	st.phase = PhaseCompleted
	inv := consoletypes.Invocation{
		Status: consoletypes.StatusInvoked,
		Kind:   consoletypes.EntryGetter,
		Key:    m.Path(sep),
		Err:    err,
	}
	if err == nil {
		inv.Results = []any{value}
	}
	return inv
}

func (d *Dispatcher) set(st *dispatch) consoletypes.Invocation {
	if len(st.tokens) == 0 {
		return d.noMatch(st)
	}
	sep := st.settings.GroupSeparator
	m, ok := st.snap.Setters().Resolve(st.tokens[0], sep)
	if !ok {
		return d.noMatch(st)
	}

	st.phase = PhaseBinding
	param := m.Parameter()
	value, ok := bindParameter(param, st.tokens, 1, true, st.settings.NumericBoolProcessing)
	if !ok {
		return d.noMatch(st)
	}

	st.phase = PhaseInvoking
	err := m.Write(value.Value.Interface())
	st.phase = PhaseCompleted
	return consoletypes.Invocation{
		Status: consoletypes.StatusInvoked,
		Kind:   consoletypes.EntrySetter,
		Key:    m.Path(sep),
		Args:   []any{value.Value.Interface()},
		Err:    err,
	}
}

func (d *Dispatcher) noMatch(st *dispatch) consoletypes.Invocation {
	failedAt := st.phase
	st.phase = PhaseNoMatch
	d.logger.Debug("No match", "key", st.key, "state", failedAt.String())
	return consoletypes.Invocation{Status: consoletypes.StatusNoMatch, Key: st.key}
}

// Bind coerces tokens into the positional arguments of sig. A parameter whose
// token fails to coerce (or is missing) takes its default when optional, leaving
// the token for the next parameter; a required one rejects the signature.
// Tokens left over after the last parameter are ignored.
func Bind(sig *commands.Signature, tokens []string, settings consoletypes.Settings) ([]reflect.Value, bool) {
	numeric := sig.NumericBool(settings)
	args := make([]reflect.Value, len(sig.Parameters))
	cursor := 0
	for i, p := range sig.Parameters {
		last := i == len(sig.Parameters)-1
		res, ok := bindParameter(p, tokens, cursor, last, numeric)
		if !ok {
			return nil, false
		}
		args[i] = res.Value
		cursor += res.Consumed
	}
	return args, true
}

func bindParameter(p consoletypes.Parameter, tokens []string, cursor int, last, numeric bool) (coercion.Result, bool) {
	if cursor < len(tokens) {
		res, err := coercion.Coerce(tokens, cursor, coercion.Target{Param: p, Last: last, NumericBool: numeric})
		if err == nil {
			return res, true
		}
	}
	if !p.Optional {
		return coercion.Result{}, false
	}
	v, err := coercion.DefaultValue(p)
	if err != nil {
		return coercion.Result{}, false
	}
	return coercion.Result{Value: v}, true
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}
