package commands

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"gonsole/pkg/consoletypes"
)

// Member is a readable or writable property registered under Group.Key, and
// optionally under a flat shortcut. Getter and setter scopes hold separate
// Member values for the same descriptor, so their keys may be suffixed differently.
type Member struct {
	Group          string
	Key            string
	Shortcut       string
	ValueType      reflect.Type
	Priority       int
	HiddenPriority int
	Description    string
	Default        any
	Native         bool
	Enum           []consoletypes.EnumValue
	Suggestions    *consoletypes.Suggestions

	get   func() any
	set   func(any) error
	order int
}

// Path returns the two-level address joined by sep.
func (m *Member) Path(sep string) string {
	return m.Group + sep + m.Key
}

// Parameter describes the setter value as a single trailing parameter.
func (m *Member) Parameter() consoletypes.Parameter {
	return consoletypes.Parameter{
		Name:        m.Key,
		Type:        m.ValueType,
		Optional:    m.Default != nil,
		Default:     m.Default,
		Enum:        m.Enum,
		Suggestions: m.Suggestions,
	}
}

// Read calls the getter, recovering panics into an error.
func (m *Member) Read() (value any, err error) {
	if m.get == nil {
		return nil, fmt.Errorf("member %s.%s is not readable", m.Group, m.Key)
	}
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("getter %s.%s panicked: %v", m.Group, m.Key, r)
		}
	}()
	return m.get(), nil
}

// Write calls the setter, recovering panics into an error.
func (m *Member) Write(value any) (err error) {
	if m.set == nil {
		return fmt.Errorf("member %s.%s is not writable", m.Group, m.Key)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("setter %s.%s panicked: %v", m.Group, m.Key, r)
		}
	}()
	return m.set(value)
}

// MemberGroup holds the members declared under one declaring key, in registration order.
type MemberGroup struct {
	Key     string
	Members []*Member
	byKey   map[string]*Member
}

// Lookup finds a member of the group by case-insensitive key.
func (g *MemberGroup) Lookup(key string) (*Member, bool) {
	m, ok := g.byKey[strings.ToLower(key)]
	return m, ok
}

// FindByPrefix returns the group's members whose key starts with prefix, ranked.
func (g *MemberGroup) FindByPrefix(prefix string) []*Member {
	lower := strings.ToLower(prefix)
	var out []*Member
	for _, m := range g.Members {
		if strings.HasPrefix(strings.ToLower(m.Key), lower) {
			out = append(out, m)
		}
	}
	rankMembers(out)
	return out
}

func (g *MemberGroup) clone() *MemberGroup {
	c := &MemberGroup{
		Key:     g.Key,
		Members: append([]*Member(nil), g.Members...),
		byKey:   make(map[string]*Member, len(g.byKey)),
	}
	for k, v := range g.byKey {
		c.byKey[k] = v
	}
	return c
}

// MemberScope is the getter or the setter namespace: groups of members plus a
// flat shortcut index.
type MemberScope struct {
	groups     map[string]*MemberGroup
	groupOrder []*MemberGroup
	shortcuts  map[string]*Member
	members    []*Member
}

func newMemberScope() *MemberScope {
	return &MemberScope{
		groups:    make(map[string]*MemberGroup),
		shortcuts: make(map[string]*Member),
	}
}

// Len returns the number of members in the scope.
func (s *MemberScope) Len() int {
	return len(s.members)
}

// Members returns the scope's members in registration order.
func (s *MemberScope) Members() []*Member {
	return append([]*Member(nil), s.members...)
}

// Group finds a group by case-insensitive key.
func (s *MemberScope) Group(key string) (*MemberGroup, bool) {
	g, ok := s.groups[strings.ToLower(key)]
	return g, ok
}

// Shortcut finds a member by exact case-insensitive shortcut.
func (s *MemberScope) Shortcut(shortcut string) (*Member, bool) {
	m, ok := s.shortcuts[strings.ToLower(shortcut)]
	return m, ok
}

// Resolve finds a member by exact shortcut first, then by exact Group<sep>Key path.
func (s *MemberScope) Resolve(path, sep string) (*Member, bool) {
	if m, ok := s.Shortcut(path); ok {
		return m, true
	}
	group, key, found := strings.Cut(path, sep)
	if !found {
		return nil, false
	}
	g, ok := s.Group(group)
	if !ok {
		return nil, false
	}
	return g.Lookup(key)
}

// FindGroupsByPrefix returns groups whose key starts with prefix, in registration order.
func (s *MemberScope) FindGroupsByPrefix(prefix string) []*MemberGroup {
	lower := strings.ToLower(prefix)
	var out []*MemberGroup
	for _, g := range s.groupOrder {
		if strings.HasPrefix(strings.ToLower(g.Key), lower) {
			out = append(out, g)
		}
	}
	return out
}

// FindShortcutsByPrefix returns members whose shortcut starts with prefix, ranked.
func (s *MemberScope) FindShortcutsByPrefix(prefix string) []*Member {
	if prefix == "" {
		return nil
	}
	lower := strings.ToLower(prefix)
	var out []*Member
	for _, m := range s.members {
		if m.Shortcut != "" && strings.HasPrefix(strings.ToLower(m.Shortcut), lower) {
			out = append(out, m)
		}
	}
	rankMembers(out)
	return out
}

func (s *MemberScope) clone() *MemberScope {
	c := &MemberScope{
		groups:     make(map[string]*MemberGroup, len(s.groups)),
		groupOrder: make([]*MemberGroup, 0, len(s.groupOrder)),
		shortcuts:  make(map[string]*Member, len(s.shortcuts)),
		members:    append([]*Member(nil), s.members...),
	}
	for _, g := range s.groupOrder {
		cg := g.clone()
		c.groups[strings.ToLower(g.Key)] = cg
		c.groupOrder = append(c.groupOrder, cg)
	}
	for k, v := range s.shortcuts {
		c.shortcuts[k] = v
	}
	return c
}

// add inserts m, suffixing its key within the group and its shortcut within the
// scope until both are unique. It returns the renames applied, if any.
func (s *MemberScope) add(m *Member) (renamed []string) {
	gk := strings.ToLower(m.Group)
	g, ok := s.groups[gk]
	if !ok {
		g = &MemberGroup{Key: m.Group, byKey: make(map[string]*Member)}
		s.groups[gk] = g
		s.groupOrder = append(s.groupOrder, g)
	}

	key := uniqueKey(m.Key, func(k string) bool {
		_, taken := g.byKey[strings.ToLower(k)]
		return taken
	})
	if key != m.Key {
		renamed = append(renamed, fmt.Sprintf("member %s.%s registered as %s", m.Group, m.Key, key))
		m.Key = key
	}
	g.byKey[strings.ToLower(key)] = m
	g.Members = append(g.Members, m)

	if m.Shortcut != "" {
		shortcut := uniqueKey(m.Shortcut, func(k string) bool {
			_, taken := s.shortcuts[strings.ToLower(k)]
			return taken
		})
		if shortcut != m.Shortcut {
			renamed = append(renamed, fmt.Sprintf("shortcut %s registered as %s", m.Shortcut, shortcut))
			m.Shortcut = shortcut
		}
		s.shortcuts[strings.ToLower(shortcut)] = m
	}

	s.members = append(s.members, m)
	return renamed
}

// uniqueKey appends 1, 2, ... to base until taken reports false.
func uniqueKey(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
