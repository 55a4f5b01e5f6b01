package discovery

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"gonsole/internal/coercion"
	"gonsole/internal/parser"
	"gonsole/pkg/consoletypes"
)

// TagName is the struct tag read by ReflectProvider.
const TagName = "console"

// ReflectProvider exposes the tagged fields of a struct as members of one group.
//
// Fields are selected by a `console` tag holding comma-separated options:
//
//	FPS   int     `console:"shortcut=fps,desc=Frames per second,readonly"`
//	Scale float64 `console:"shortcut=ts,default=1,priority=10"`
//	Name  string  `console:""`
//
// Options are shortcut, desc, priority, default, and the flags readonly,
// writeonly and native. Text after a comma that is not an option continues the
// previous value, so descriptions may contain commas. A tag of "-" skips the field.
// Field reads and writes made through the console hold the provider's locker.
type ReflectProvider struct {
	group  string
	target reflect.Value
	locker sync.Locker
}

// NewReflectProvider creates a provider for target, which must be a non-nil
// pointer to a struct. An empty group uses the struct type name.
func NewReflectProvider(group string, target any) (*ReflectProvider, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("reflect provider needs a pointer to a struct, got %T", target)
	}
	if group == "" {
		group = v.Elem().Type().Name()
	}
	return &ReflectProvider{group: group, target: v.Elem(), locker: &sync.Mutex{}}, nil
}

// SetLocker replaces the lock held around field access, so that host code
// mutating the same struct can share it.
func (p *ReflectProvider) SetLocker(l sync.Locker) {
	p.locker = l
}

// Descriptors returns one member descriptor per tagged exported field.
// A tag that cannot be parsed is reported as an error.
func (p *ReflectProvider) Descriptors(ctx context.Context) (consoletypes.Descriptors, error) {
	var descs consoletypes.Descriptors
	t := p.target.Type()
	for i := 0; i < t.NumField(); i++ {
		if err := ctx.Err(); err != nil {
			return consoletypes.Descriptors{}, err
		}
		field := t.Field(i)
		tag, ok := field.Tag.Lookup(TagName)
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}
		desc, err := p.member(i, field, tag)
		if err != nil {
			return consoletypes.Descriptors{}, fmt.Errorf("%s.%s: %w", t.Name(), field.Name, err)
		}
		descs.Members = append(descs.Members, desc)
	}
	return descs, nil
}

func (p *ReflectProvider) member(index int, field reflect.StructField, tag string) (consoletypes.MemberDescriptor, error) {
	opts, err := parseTag(tag)
	if err != nil {
		return consoletypes.MemberDescriptor{}, err
	}

	desc := consoletypes.MemberDescriptor{
		DeclaringKey: p.group,
		MemberKey:    field.Name,
		ValueType:    field.Type,
		Shortcut:     opts.shortcut,
		Description:  opts.desc,
		Priority:     opts.priority,
		Native:       opts.native,
		CanRead:      !opts.writeOnly,
		CanWrite:     !opts.readOnly,
	}

	if opts.hasDefault {
		v, err := parseDefault(field.Type, opts.defaultText)
		if err != nil {
			return consoletypes.MemberDescriptor{}, err
		}
		desc.Default = v
	}

	if desc.CanRead {
		desc.Get = func() any {
			p.locker.Lock()
			defer p.locker.Unlock()
			return p.target.Field(index).Interface()
		}
	}
	if desc.CanWrite {
		desc.Set = func(value any) error {
			v := reflect.ValueOf(value)
			if !v.IsValid() || !v.Type().AssignableTo(field.Type) {
				return fmt.Errorf("cannot assign %T to %s", value, field.Type)
			}
			p.locker.Lock()
			defer p.locker.Unlock()
			p.target.Field(index).Set(v)
			return nil
		}
	}
	return desc, nil
}

type tagOptions struct {
	shortcut    string
	desc        string
	priority    int
	defaultText string
	hasDefault  bool
	readOnly    bool
	writeOnly   bool
	native      bool
}

func parseTag(tag string) (tagOptions, error) {
	var opts tagOptions
	if strings.TrimSpace(tag) == "" {
		return opts, nil
	}

	var last *string
	for _, part := range strings.Split(tag, ",") {
		name, value, hasValue := strings.Cut(part, "=")
		name = strings.TrimSpace(name)

		if !hasValue {
			switch name {
			case "readonly":
				opts.readOnly = true
				last = nil
				continue
			case "writeonly":
				opts.writeOnly = true
				last = nil
				continue
			case "native":
				opts.native = true
				last = nil
				continue
			}
			if last == nil {
				return tagOptions{}, fmt.Errorf("unknown tag option %q", name)
			}
			*last += "," + part
			continue
		}

		switch name {
		case "shortcut":
			opts.shortcut = strings.TrimSpace(value)
			last = nil
		case "desc":
			opts.desc = value
			last = &opts.desc
		case "default":
			opts.defaultText = value
			opts.hasDefault = true
			last = &opts.defaultText
		case "priority":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return tagOptions{}, fmt.Errorf("invalid priority %q", value)
			}
			opts.priority = n
			last = nil
		default:
			return tagOptions{}, fmt.Errorf("unknown tag option %q", name)
		}
	}

	if opts.readOnly && opts.writeOnly {
		return tagOptions{}, fmt.Errorf("readonly and writeonly are exclusive")
	}
	return opts, nil
}

func parseDefault(t reflect.Type, text string) (any, error) {
	_, tokens := parser.Tokenize("default "+text, 0)
	res, err := coercion.Coerce(tokens, 0, coercion.Target{
		Param:       consoletypes.Parameter{Name: "default", Type: t},
		Last:        true,
		NumericBool: true,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid default %q: %w", text, err)
	}
	return res.Interface(), nil
}
