package commands

import (
	"fmt"
	"strings"
)

// Info renders the plain-text information block for key: every listed
// signature's usage plus parameter hints. The reserved getter and setter keys
// describe their member scopes. It reports false for unknown keys.
func (s *Snapshot) Info(key string) (string, bool) {
	switch {
	case s.IsGetterKey(key):
		return s.scopeInfo(s.settings.GetterKey, "Reads a member value", s.getters, false), true
	case s.IsSetterKey(key):
		return s.scopeInfo(s.settings.SetterKey, "Writes a member value", s.setters, true), true
	}

	cmd, ok := s.ResolveKey(key)
	if !ok {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(cmd.Key)
	if d := cmd.Description(); d != "" {
		sb.WriteString(": ")
		sb.WriteString(d)
	}
	for _, sig := range cmd.Signatures {
		sb.WriteString("\n  ")
		sb.WriteString(s.settings.Prefix)
		sb.WriteString(sig.Usage())
		if sig.Description != "" && sig.Description != cmd.Description() {
			sb.WriteString("  - ")
			sb.WriteString(sig.Description)
		}
		for _, p := range sig.Parameters {
			if p.Hint == nil || p.Hint.Text == "" {
				continue
			}
			fmt.Fprintf(&sb, "\n      %s: %s", p.Name, p.Hint.Text)
		}
	}
	return sb.String(), true
}

func (s *Snapshot) scopeInfo(key, summary string, scope *MemberScope, withValue bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (%d members)", key, summary, scope.Len())
	fmt.Fprintf(&sb, "\n  %s%s <Group%sMember|shortcut>", s.settings.Prefix, key, s.settings.GroupSeparator)
	if withValue {
		sb.WriteString(" <value>")
	}
	for _, m := range scope.members {
		fmt.Fprintf(&sb, "\n      %s", m.Path(s.settings.GroupSeparator))
		if m.Shortcut != "" {
			fmt.Fprintf(&sb, " (%s)", m.Shortcut)
		}
		if m.Description != "" {
			fmt.Fprintf(&sb, ": %s", m.Description)
		}
	}
	return sb.String()
}
