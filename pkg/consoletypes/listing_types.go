// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the listing snapshot handed to hosts for help displays.
package consoletypes

import (
	"fmt"
	"strings"
)

// EntryKind is the kind of a listing entry.
type EntryKind int

const (
	// EntryCommand is a command signature.
	EntryCommand EntryKind = iota
	// EntryGetter is a readable member.
	EntryGetter
	// EntrySetter is a writable member.
	EntrySetter
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case EntryGetter:
		return "getter"
	case EntrySetter:
		return "setter"
	default:
		return "command"
	}
}

// MarshalText encodes the kind by name.
func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *EntryKind) UnmarshalText(text []byte) error {
	parsed, err := ParseEntryKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseEntryKind parses a kind name; plural forms are accepted.
func ParseEntryKind(name string) (EntryKind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s") {
	case "command":
		return EntryCommand, nil
	case "getter":
		return EntryGetter, nil
	case "setter":
		return EntrySetter, nil
	}
	return EntryCommand, fmt.Errorf("unknown entry kind %q", name)
}

// ListEntry is one row of a listing.
type ListEntry struct {
	Kind        EntryKind `json:"kind" yaml:"kind"`
	Key         string    `json:"key" yaml:"key"`
	Usage       string    `json:"usage" yaml:"usage"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Shortcut    string    `json:"shortcut,omitempty" yaml:"shortcut,omitempty"`
	Priority    int       `json:"priority" yaml:"priority"`
	Native      bool      `json:"native,omitempty" yaml:"native,omitempty"`
}

// ListFilter narrows a listing. The zero value lists every listed command and member.
type ListFilter struct {
	// Kinds restricts the entry kinds; empty means all.
	Kinds []EntryKind
	// Contains keeps entries whose key contains this text, case-insensitively.
	Contains string
	// IncludeUnlisted also returns signatures registered with DisableListing.
	IncludeUnlisted bool
}

// Accepts reports whether kind passes the kind restriction.
func (f ListFilter) Accepts(kind EntryKind) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, k := range f.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}
