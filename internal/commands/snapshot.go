package commands

import (
	"sort"
	"strings"

	"gonsole/pkg/consoletypes"
)

// Command is a key and its overload set. Signatures are ordered native first,
// then by registration.
type Command struct {
	Key            string
	Signatures     []*Signature
	Priority       int
	HiddenPriority int
	order          int
}

// Description returns the first non-empty signature description.
func (c *Command) Description() string {
	for _, s := range c.Signatures {
		if s.Description != "" {
			return s.Description
		}
	}
	return ""
}

// AutoCompletable reports whether any signature takes part in autocompletion.
func (c *Command) AutoCompletable() bool {
	for _, s := range c.Signatures {
		if !s.DisableAutoCompletion {
			return true
		}
	}
	return false
}

func (c *Command) withSignature(sig *Signature) *Command {
	next := &Command{Key: c.Key, order: c.order}
	next.Signatures = make([]*Signature, 0, len(c.Signatures)+1)
	next.Signatures = append(next.Signatures, c.Signatures...)
	next.Signatures = append(next.Signatures, sig)
	sort.SliceStable(next.Signatures, func(i, j int) bool {
		return next.Signatures[i].Native && !next.Signatures[j].Native
	})
	for i, s := range next.Signatures {
		if i == 0 || s.Priority > next.Priority {
			next.Priority = s.Priority
		}
		if i == 0 || s.HiddenPriority > next.HiddenPriority {
			next.HiddenPriority = s.HiddenPriority
		}
	}
	return next
}

// Snapshot is one fully built, immutable registry generation. Every read-side
// operation works against a single snapshot.
type Snapshot struct {
	settings consoletypes.Settings
	commands map[string]*Command
	order    []*Command
	getters  *MemberScope
	setters  *MemberScope
	seq      int
}

func newSnapshot(settings consoletypes.Settings) *Snapshot {
	return &Snapshot{
		settings: settings,
		commands: make(map[string]*Command),
		getters:  newMemberScope(),
		setters:  newMemberScope(),
	}
}

func (s *Snapshot) clone() *Snapshot {
	c := &Snapshot{
		settings: s.settings,
		commands: make(map[string]*Command, len(s.commands)),
		order:    append([]*Command(nil), s.order...),
		getters:  s.getters.clone(),
		setters:  s.setters.clone(),
		seq:      s.seq,
	}
	for k, v := range s.commands {
		c.commands[k] = v
	}
	return c
}

// Settings returns the configuration the snapshot was built with.
func (s *Snapshot) Settings() consoletypes.Settings {
	return s.settings
}

// Getters returns the readable member scope.
func (s *Snapshot) Getters() *MemberScope {
	return s.getters
}

// Setters returns the writable member scope.
func (s *Snapshot) Setters() *MemberScope {
	return s.setters
}

// Commands returns all commands in registration order.
func (s *Snapshot) Commands() []*Command {
	return append([]*Command(nil), s.order...)
}

// Stats summarises the snapshot contents.
func (s *Snapshot) Stats() (commands, signatures, getters, setters int) {
	for _, c := range s.order {
		signatures += len(c.Signatures)
	}
	return len(s.order), signatures, s.getters.Len(), s.setters.Len()
}

// ResolveKey finds a command by case-insensitive exact key.
func (s *Snapshot) ResolveKey(key string) (*Command, bool) {
	c, ok := s.commands[strings.ToLower(key)]
	return c, ok
}

// IsGetterKey reports whether key is the reserved getter pseudo-command.
func (s *Snapshot) IsGetterKey(key string) bool {
	return strings.EqualFold(key, s.settings.GetterKey)
}

// IsSetterKey reports whether key is the reserved setter pseudo-command.
func (s *Snapshot) IsSetterKey(key string) bool {
	return strings.EqualFold(key, s.settings.SetterKey)
}

// KeyCandidate is a prefix search hit: a command, or a reserved member key
// when Command is nil.
type KeyCandidate struct {
	Key     string
	Command *Command
}

// FindByPrefix returns every command whose key starts with prefix, ranked by
// hidden priority, then priority, then registration order. The reserved getter
// and setter keys follow all commands.
func (s *Snapshot) FindByPrefix(prefix string) []KeyCandidate {
	lower := strings.ToLower(prefix)
	var matches []*Command
	for _, c := range s.order {
		if strings.HasPrefix(strings.ToLower(c.Key), lower) {
			matches = append(matches, c)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.HiddenPriority != b.HiddenPriority {
			return a.HiddenPriority > b.HiddenPriority
		}
		return a.Priority > b.Priority
	})

	out := make([]KeyCandidate, 0, len(matches)+2)
	for _, c := range matches {
		out = append(out, KeyCandidate{Key: c.Key, Command: c})
	}
	if s.getters.Len() > 0 && strings.HasPrefix(strings.ToLower(s.settings.GetterKey), lower) {
		out = append(out, KeyCandidate{Key: s.settings.GetterKey})
	}
	if s.setters.Len() > 0 && strings.HasPrefix(strings.ToLower(s.settings.SetterKey), lower) {
		out = append(out, KeyCandidate{Key: s.settings.SetterKey})
	}
	return out
}

func rankMembers(members []*Member) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.HiddenPriority != b.HiddenPriority {
			return a.HiddenPriority > b.HiddenPriority
		}
		return a.Priority > b.Priority
	})
}
