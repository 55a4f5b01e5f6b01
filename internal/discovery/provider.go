package discovery

import (
	"context"
	"fmt"
	"reflect"

	"gonsole/pkg/consoletypes"
)

// StaticProvider returns a fixed descriptor set.
type StaticProvider struct {
	commands []consoletypes.CommandDescriptor
	members  []consoletypes.MemberDescriptor
}

// NewStaticProvider creates a provider over the given descriptors.
func NewStaticProvider(commands []consoletypes.CommandDescriptor, members []consoletypes.MemberDescriptor) *StaticProvider {
	return &StaticProvider{commands: commands, members: members}
}

// Descriptors returns a copy of the descriptor set.
func (p *StaticProvider) Descriptors(ctx context.Context) (consoletypes.Descriptors, error) {
	if err := ctx.Err(); err != nil {
		return consoletypes.Descriptors{}, err
	}
	return consoletypes.Descriptors{
		Commands: append([]consoletypes.CommandDescriptor(nil), p.commands...),
		Members:  append([]consoletypes.MemberDescriptor(nil), p.members...),
	}, nil
}

// Combine merges providers in order. Each provider runs only if ctx is still live.
func Combine(providers ...consoletypes.DescriptorProvider) consoletypes.DescriptorProvider {
	return consoletypes.ProviderFunc(func(ctx context.Context) (consoletypes.Descriptors, error) {
		var all consoletypes.Descriptors
		for i, p := range providers {
			if err := ctx.Err(); err != nil {
				return consoletypes.Descriptors{}, err
			}
			descs, err := p.Descriptors(ctx)
			if err != nil {
				return consoletypes.Descriptors{}, fmt.Errorf("provider %d: %w", i, err)
			}
			all = all.Merge(descs)
		}
		return all, nil
	})
}

// Func builds a command descriptor from a Go func. Parameter names are taken
// from names in order; missing names become arg1, arg2 and so on. Parameter
// types come from the func's signature.
func Func(key string, fn any, description string, names ...string) consoletypes.CommandDescriptor {
	desc := consoletypes.CommandDescriptor{Key: key, Handler: fn, Description: description}

	t := reflect.TypeOf(fn)
	if t == nil || t.Kind() != reflect.Func {
		return desc
	}
	for i := 0; i < t.NumIn(); i++ {
		name := fmt.Sprintf("arg%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		desc.Parameters = append(desc.Parameters, consoletypes.Parameter{Name: name, Type: t.In(i)})
	}
	return desc
}
