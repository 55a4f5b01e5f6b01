package commands

import (
	"sort"
	"strings"

	"gonsole/pkg/consoletypes"
)

// List returns the snapshot's commands and members as listing entries sorted
// native first, then by priority descending, otherwise in registration order.
func (s *Snapshot) List(filter consoletypes.ListFilter) []consoletypes.ListEntry {
	type ranked struct {
		entry consoletypes.ListEntry
		order int
	}
	var rows []ranked
	contains := strings.ToLower(filter.Contains)
	matches := func(keys ...string) bool {
		if contains == "" {
			return true
		}
		for _, k := range keys {
			if k != "" && strings.Contains(strings.ToLower(k), contains) {
				return true
			}
		}
		return false
	}

	if filter.Accepts(consoletypes.EntryCommand) {
		for _, c := range s.order {
			if !matches(c.Key) {
				continue
			}
			for _, sig := range c.Signatures {
				if sig.DisableListing && !filter.IncludeUnlisted {
					continue
				}
				rows = append(rows, ranked{
					entry: consoletypes.ListEntry{
						Kind:        consoletypes.EntryCommand,
						Key:         c.Key,
						Usage:       s.settings.Prefix + sig.Usage(),
						Description: sig.Description,
						Priority:    sig.Priority,
						Native:      sig.Native,
					},
					order: sig.order,
				})
			}
		}
	}

	sep := s.settings.GroupSeparator
	if filter.Accepts(consoletypes.EntryGetter) {
		for _, m := range s.getters.members {
			if !matches(m.Path(sep), m.Shortcut) {
				continue
			}
			rows = append(rows, ranked{
				entry: s.memberEntry(consoletypes.EntryGetter, m, s.settings.GetterKey+" "+m.Path(sep)),
				order: m.order,
			})
		}
	}
	if filter.Accepts(consoletypes.EntrySetter) {
		for _, m := range s.setters.members {
			if !matches(m.Path(sep), m.Shortcut) {
				continue
			}
			usage := s.settings.SetterKey + " " + m.Path(sep) + " " + ParameterUsage(m.Parameter())
			rows = append(rows, ranked{
				entry: s.memberEntry(consoletypes.EntrySetter, m, usage),
				order: m.order,
			})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].entry, rows[j].entry
		if a.Native != b.Native {
			return a.Native
		}
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return rows[i].order < rows[j].order
	})

	out := make([]consoletypes.ListEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry
	}
	return out
}

func (s *Snapshot) memberEntry(kind consoletypes.EntryKind, m *Member, usage string) consoletypes.ListEntry {
	return consoletypes.ListEntry{
		Kind:        kind,
		Key:         m.Path(s.settings.GroupSeparator),
		Usage:       s.settings.Prefix + usage,
		Description: m.Description,
		Shortcut:    m.Shortcut,
		Priority:    m.Priority,
		Native:      m.Native,
	}
}
