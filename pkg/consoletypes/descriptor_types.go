// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the descriptor model a host hands to the registry: commands with
// their parameters, exposed members, and the provider interface that produces them.
package consoletypes

import (
	"context"
	"reflect"
)

// HintShow selects which parameter facts are surfaced next to a hint text.
type HintShow uint8

const (
	// ShowDefault appends the default value of an optional parameter.
	ShowDefault HintShow = 1 << iota
	// ShowType prefixes the parameter type name.
	ShowType
	// ShowName prefixes the parameter name.
	ShowName
)

// ShowAll surfaces name, type and default value.
const ShowAll = ShowDefault | ShowType | ShowName

// Has reports whether flag is set.
func (h HintShow) Has(flag HintShow) bool {
	return h&flag != 0
}

// ParameterHint is free text describing a parameter plus the facts to show with it.
type ParameterHint struct {
	Text string
	Show HintShow
}

// Suggestions is an ordered list of literal completions for a parameter.
type Suggestions struct {
	Values        []string
	CaseSensitive bool
}

// EnumValue is one member of an enumeration: its display name and ordinal value.
type EnumValue struct {
	Name  string
	Value int64
}

// Parameter describes one positional parameter of a command signature.
type Parameter struct {
	Name string
	// Type is the Go type handed to the handler. When nil the registry takes it
	// from the handler's signature.
	Type        reflect.Type
	Optional    bool
	Default     any
	Hint        *ParameterHint
	Suggestions *Suggestions
	// Enum lists the members of an enumeration parameter. Type must then be an
	// integer type (usually a named one) or a string type.
	Enum []EnumValue
}

// Kind classifies the parameter for coercion.
func (p Parameter) Kind() ValueKind {
	if len(p.Enum) > 0 {
		return KindEnum
	}
	return KindOf(p.Type)
}

// CommandDescriptor describes one command overload supplied by the host.
// Registering several descriptors with the same key builds an overload set.
type CommandDescriptor struct {
	Key string
	// Handler is a Go func whose parameters line up with Parameters. It may
	// return nothing, an error, a value, or a value and an error.
	Handler     any
	Parameters  []Parameter
	Priority    int
	Description string
	// Native marks host-provided commands that always win prefix races.
	Native bool

	DisableNumericBoolProcessing bool
	DisableListing               bool
	DisableAutoCompletion        bool
}

// MemberDescriptor describes a readable and/or writable property exposed under
// a two-level DeclaringKey.MemberKey path.
type MemberDescriptor struct {
	DeclaringKey string
	MemberKey    string
	ValueType    reflect.Type

	CanRead  bool
	CanWrite bool
	Get      func() any
	Set      func(value any) error

	Priority    int
	Shortcut    string
	Description string
	// Default is used by the setter when no value is typed.
	Default     any
	Native      bool
	Enum        []EnumValue
	Suggestions *Suggestions
}

// Descriptors is the flat result of one discovery pass.
type Descriptors struct {
	Commands []CommandDescriptor
	Members  []MemberDescriptor
}

// Merge appends other's descriptors after d's, preserving order.
func (d Descriptors) Merge(other Descriptors) Descriptors {
	return Descriptors{
		Commands: append(append([]CommandDescriptor(nil), d.Commands...), other.Commands...),
		Members:  append(append([]MemberDescriptor(nil), d.Members...), other.Members...),
	}
}

// DescriptorProvider produces descriptors for a registry build. Implementations
// may be slow (reflection, scanning) and must honour ctx cancellation.
type DescriptorProvider interface {
	Descriptors(ctx context.Context) (Descriptors, error)
}

// ProviderFunc adapts a function to DescriptorProvider.
type ProviderFunc func(ctx context.Context) (Descriptors, error)

// Descriptors calls f.
func (f ProviderFunc) Descriptors(ctx context.Context) (Descriptors, error) {
	return f(ctx)
}
