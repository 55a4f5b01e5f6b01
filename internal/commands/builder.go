package commands

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/log"

	"gonsole/internal/coercion"
	"gonsole/pkg/consoletypes"
)

var (
	// ErrMalformedDescriptor marks a descriptor that cannot be registered. The
	// descriptor is skipped; the rest of the build continues.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
	// ErrReservedKey marks a command whose key collides with the getter or setter key.
	ErrReservedKey = errors.New("reserved key")
)

// builder adds descriptors to a snapshot under construction. A builder's
// snapshot is never visible to readers until it is published.
type builder struct {
	snap   *Snapshot
	logger *log.Logger
}

func newBuilder(base *Snapshot, logger *log.Logger) *builder {
	return &builder{snap: base, logger: logger}
}

func (b *builder) addCommand(desc consoletypes.CommandDescriptor) error {
	settings := b.snap.settings
	key := strings.TrimSpace(desc.Key)

	switch {
	case key == "":
		return fmt.Errorf("%w: command key cannot be empty", ErrMalformedDescriptor)
	case strings.ContainsAny(key, " \t"):
		return fmt.Errorf("%w: command key %q cannot contain spaces", ErrMalformedDescriptor, key)
	case strings.Contains(key, `"`):
		return fmt.Errorf("%w: command key %q cannot contain quotes", ErrMalformedDescriptor, key)
	case settings.InfoOperator != "" && strings.HasSuffix(key, settings.InfoOperator):
		return fmt.Errorf("%w: command key %q ends with the info operator %q", ErrMalformedDescriptor, key, settings.InfoOperator)
	case strings.EqualFold(key, settings.GetterKey) || strings.EqualFold(key, settings.SetterKey):
		return fmt.Errorf("%w: %q", ErrReservedKey, key)
	}

	handler := reflect.ValueOf(desc.Handler)
	if !handler.IsValid() || handler.Kind() != reflect.Func || handler.IsNil() {
		return fmt.Errorf("%w: command %q: handler must be a non-nil func, got %T", ErrMalformedDescriptor, key, desc.Handler)
	}
	ft := handler.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("%w: command %q: variadic handlers are not supported", ErrMalformedDescriptor, key)
	}
	if ft.NumIn() != len(desc.Parameters) {
		return fmt.Errorf("%w: command %q: handler takes %d arguments but %d parameters are described",
			ErrMalformedDescriptor, key, ft.NumIn(), len(desc.Parameters))
	}

	params := make([]consoletypes.Parameter, len(desc.Parameters))
	for i, p := range desc.Parameters {
		in := ft.In(i)
		if p.Type == nil {
			p.Type = in
		} else if !p.Type.AssignableTo(in) {
			return fmt.Errorf("%w: command %q: parameter %d (%s) of type %s is not assignable to handler argument %s",
				ErrMalformedDescriptor, key, i, p.Name, p.Type, in)
		}
		if len(p.Enum) > 0 && !canHoldEnum(p.Type) {
			return fmt.Errorf("%w: command %q: enum parameter %s must have an integer or string type, got %s",
				ErrMalformedDescriptor, key, p.Name, p.Type)
		}
		if p.Optional {
			if _, err := coercion.DefaultValue(p); err != nil {
				return fmt.Errorf("%w: command %q: parameter %s: %v", ErrMalformedDescriptor, key, p.Name, err)
			}
		}
		params[i] = p
	}

	b.snap.seq++
	sig := &Signature{
		Key:                          key,
		Parameters:                   params,
		Priority:                     desc.Priority,
		HiddenPriority:               hiddenPriority(desc.Priority, desc.Native, settings),
		Description:                  desc.Description,
		Native:                       desc.Native,
		DisableNumericBoolProcessing: desc.DisableNumericBoolProcessing,
		DisableListing:               desc.DisableListing,
		DisableAutoCompletion:        desc.DisableAutoCompletion,
		handler:                      handler,
		order:                        b.snap.seq,
	}

	lower := strings.ToLower(key)
	existing, ok := b.snap.commands[lower]
	if !ok {
		cmd := (&Command{Key: key, order: b.snap.seq}).withSignature(sig)
		b.snap.commands[lower] = cmd
		b.snap.order = append(b.snap.order, cmd)
		b.logger.Debug("Registered command", "key", key, "params", len(params), "native", desc.Native)
		return nil
	}

	cmd := existing.withSignature(sig)
	b.snap.commands[lower] = cmd
	for i, c := range b.snap.order {
		if c == existing {
			b.snap.order[i] = cmd
			break
		}
	}
	b.logger.Debug("Registered overload", "key", existing.Key, "overloads", len(cmd.Signatures), "native", desc.Native)
	return nil
}

func (b *builder) addMember(desc consoletypes.MemberDescriptor) error {
	settings := b.snap.settings
	group := strings.TrimSpace(desc.DeclaringKey)
	key := strings.TrimSpace(desc.MemberKey)
	shortcut := strings.TrimSpace(desc.Shortcut)

	switch {
	case group == "" || key == "":
		return fmt.Errorf("%w: member needs both a declaring key and a member key (got %q, %q)", ErrMalformedDescriptor, group, key)
	case strings.ContainsAny(group+key+shortcut, " \t"):
		return fmt.Errorf("%w: member %s.%s: keys cannot contain spaces", ErrMalformedDescriptor, group, key)
	case strings.Contains(group, settings.GroupSeparator) || strings.Contains(key, settings.GroupSeparator):
		return fmt.Errorf("%w: member %s.%s: keys cannot contain the separator %q", ErrMalformedDescriptor, group, key, settings.GroupSeparator)
	case !desc.CanRead && !desc.CanWrite:
		return fmt.Errorf("%w: member %s.%s is neither readable nor writable", ErrMalformedDescriptor, group, key)
	case desc.CanRead && desc.Get == nil:
		return fmt.Errorf("%w: member %s.%s is readable but has no read accessor", ErrMalformedDescriptor, group, key)
	case desc.CanWrite && desc.Set == nil:
		return fmt.Errorf("%w: member %s.%s is writable but has no write accessor", ErrMalformedDescriptor, group, key)
	}

	valueType := desc.ValueType
	if valueType == nil && desc.Default != nil {
		valueType = reflect.TypeOf(desc.Default)
	}
	if valueType == nil {
		return fmt.Errorf("%w: member %s.%s has no value type", ErrMalformedDescriptor, group, key)
	}
	if len(desc.Enum) > 0 && !canHoldEnum(valueType) {
		return fmt.Errorf("%w: member %s.%s: enum members must have an integer or string type, got %s", ErrMalformedDescriptor, group, key, valueType)
	}

	template := Member{
		Group:          group,
		Key:            key,
		Shortcut:       shortcut,
		ValueType:      valueType,
		Priority:       desc.Priority,
		HiddenPriority: hiddenPriority(desc.Priority, desc.Native, settings),
		Description:    desc.Description,
		Default:        desc.Default,
		Native:         desc.Native,
		Enum:           desc.Enum,
		Suggestions:    desc.Suggestions,
	}
	if desc.CanWrite && desc.Default != nil {
		if _, err := coercion.DefaultValue(template.Parameter()); err != nil {
			return fmt.Errorf("%w: member %s.%s: %v", ErrMalformedDescriptor, group, key, err)
		}
	}

	b.snap.seq++
	if desc.CanRead {
		getter := template
		getter.get = desc.Get
		getter.order = b.snap.seq
		for _, r := range b.snap.getters.add(&getter) {
			b.logger.Warn("Getter collision resolved", "member", r)
		}
	}
	if desc.CanWrite {
		setter := template
		setter.set = desc.Set
		setter.order = b.snap.seq
		for _, r := range b.snap.setters.add(&setter) {
			b.logger.Warn("Setter collision resolved", "member", r)
		}
	}
	b.logger.Debug("Registered member", "member", group+settings.GroupSeparator+key, "read", desc.CanRead, "write", desc.CanWrite)
	return nil
}

func hiddenPriority(priority int, native bool, settings consoletypes.Settings) int {
	if native {
		return priority + settings.NativeBoost
	}
	return priority
}

func canHoldEnum(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.String:
		return true
	}
	return false
}
