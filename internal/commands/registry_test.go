package commands

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonsole/internal/logger"
	"gonsole/pkg/consoletypes"
)

func newTestRegistry() *Registry {
	return NewRegistry(consoletypes.DefaultSettings(), logger.Discard())
}

func quitDescriptor(priority int, native bool) consoletypes.CommandDescriptor {
	return consoletypes.CommandDescriptor{
		Key:     "Quit",
		Handler: func(secondsDelay int, logCountdown bool) {},
		Parameters: []consoletypes.Parameter{
			{Name: "secondsDelay", Optional: true, Default: 0},
			{Name: "logCountdown", Optional: true, Default: false},
		},
		Priority:    priority,
		Native:      native,
		Description: "Quits the application",
	}
}

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(quitDescriptor(1000, false)))

	cmd, ok := r.ResolveKey("quit")
	require.True(t, ok)
	assert.Equal(t, "Quit", cmd.Key)
	require.Len(t, cmd.Signatures, 1)

	sig := cmd.Signatures[0]
	assert.Equal(t, reflect.TypeOf(0), sig.Parameters[0].Type, "type is taken from the handler")
	assert.Equal(t, reflect.TypeOf(false), sig.Parameters[1].Type)
	assert.Equal(t, 0, sig.Required())
	assert.Equal(t, "Quit [int secondsDelay = 0] [bool logCountdown = false]", sig.Usage())

	_, ok = r.ResolveKey("qui")
	assert.False(t, ok, "resolution is exact")
}

func TestRegistry_OverloadsAppend(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(quitDescriptor(10, false)))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{
		Key:        "QUIT",
		Handler:    func(reason string) {},
		Parameters: []consoletypes.Parameter{{Name: "reason"}},
		Priority:   50,
	}))

	cmd, ok := r.ResolveKey("Quit")
	require.True(t, ok)
	require.Len(t, cmd.Signatures, 2)
	assert.Equal(t, "Quit", cmd.Key, "first registration names the command")
	assert.Equal(t, 50, cmd.Priority, "aggregate priority is the maximum")
	assert.Len(t, r.Snapshot().Commands(), 1)
}

func TestRegistry_NativeSignaturesComeFirst(t *testing.T) {
	orders := map[string][]bool{
		"native registered last":  {false, true},
		"native registered first": {true, false},
	}
	for name, natives := range orders {
		t.Run(name, func(t *testing.T) {
			r := newTestRegistry()
			for i, native := range natives {
				d := consoletypes.CommandDescriptor{
					Key:         "spawn",
					Handler:     func(string) {},
					Parameters:  []consoletypes.Parameter{{Name: "what"}},
					Native:      native,
					Description: fmt.Sprintf("overload %d", i),
				}
				require.NoError(t, r.Register(d))
			}

			cmd, ok := r.ResolveKey("spawn")
			require.True(t, ok)
			assert.True(t, cmd.Signatures[0].Native)
			assert.False(t, cmd.Signatures[1].Native)
			assert.Equal(t, consoletypes.DefaultNativeBoost, cmd.HiddenPriority)
		})
	}
}

func TestRegistry_FindByPrefixRanking(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "scene.load", Handler: func() {}, Priority: 5}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "scene.list", Handler: func() {}, Priority: 9}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "scene.lights", Handler: func() {}, Priority: 1, Native: true}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "say", Handler: func() {}, Priority: 5}))

	keys := func(cands []KeyCandidate) []string {
		var out []string
		for _, c := range cands {
			out = append(out, c.Key)
		}
		return out
	}

	assert.Equal(t, []string{"scene.lights", "scene.list", "scene.load"}, keys(r.FindByPrefix("SC")))
	assert.Equal(t, []string{"scene.lights", "scene.list", "scene.load", "say"}, keys(r.FindByPrefix("s")))
	assert.Empty(t, r.FindByPrefix("x"))
}

func TestRegistry_FindByPrefixIncludesReservedKeys(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "setup", Handler: func() {}}))

	cands := r.FindByPrefix("se")
	require.Len(t, cands, 1, "set is offered only once a setter exists")

	require.NoError(t, r.RegisterMember(consoletypes.MemberDescriptor{
		DeclaringKey: "Render", MemberKey: "scale", ValueType: reflect.TypeOf(0.0),
		CanWrite: true, Set: func(any) error { return nil },
	}))
	cands = r.FindByPrefix("se")
	require.Len(t, cands, 2)
	assert.Equal(t, "setup", cands[0].Key)
	assert.Equal(t, "set", cands[1].Key)
	assert.Nil(t, cands[1].Command)
}

func TestRegistry_MalformedDescriptors(t *testing.T) {
	tests := []struct {
		name string
		desc consoletypes.CommandDescriptor
		err  error
	}{
		{name: "empty key", desc: consoletypes.CommandDescriptor{Handler: func() {}}, err: ErrMalformedDescriptor},
		{name: "key with space", desc: consoletypes.CommandDescriptor{Key: "a b", Handler: func() {}}, err: ErrMalformedDescriptor},
		{name: "nil handler", desc: consoletypes.CommandDescriptor{Key: "a"}, err: ErrMalformedDescriptor},
		{name: "not a func", desc: consoletypes.CommandDescriptor{Key: "a", Handler: 42}, err: ErrMalformedDescriptor},
		{name: "arity mismatch", desc: consoletypes.CommandDescriptor{Key: "a", Handler: func(int) {}}, err: ErrMalformedDescriptor},
		{name: "variadic", desc: consoletypes.CommandDescriptor{Key: "a", Handler: func(...int) {}, Parameters: []consoletypes.Parameter{{}}}, err: ErrMalformedDescriptor},
		{
			name: "type mismatch",
			desc: consoletypes.CommandDescriptor{Key: "a", Handler: func(int) {}, Parameters: []consoletypes.Parameter{{Type: reflect.TypeOf("")}}},
			err:  ErrMalformedDescriptor,
		},
		{
			name: "bad default",
			desc: consoletypes.CommandDescriptor{Key: "a", Handler: func(string) {}, Parameters: []consoletypes.Parameter{{Optional: true, Default: 3}}},
			err:  ErrMalformedDescriptor,
		},
		{name: "info operator suffix", desc: consoletypes.CommandDescriptor{Key: "help?", Handler: func() {}}, err: ErrMalformedDescriptor},
		{name: "reserved getter key", desc: consoletypes.CommandDescriptor{Key: "GET", Handler: func() {}}, err: ErrReservedKey},
		{name: "reserved setter key", desc: consoletypes.CommandDescriptor{Key: "set", Handler: func() {}}, err: ErrReservedKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			err := r.Register(tt.desc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
			assert.Empty(t, r.Snapshot().Commands())
		})
	}
}

func TestRegistry_ShortcutCollisionsAreSuffixed(t *testing.T) {
	r := newTestRegistry()
	for i := 0; i < 3; i++ {
		v := i
		require.NoError(t, r.RegisterMember(consoletypes.MemberDescriptor{
			DeclaringKey: fmt.Sprintf("Stats%d", i),
			MemberKey:    "fps",
			ValueType:    reflect.TypeOf(0),
			CanRead:      true,
			Get:          func() any { return v },
			Shortcut:     "fps",
		}))
	}

	var shortcuts []string
	for _, m := range r.Snapshot().Getters().Members() {
		shortcuts = append(shortcuts, m.Shortcut)
	}
	assert.Equal(t, []string{"fps", "fps1", "fps2"}, shortcuts)

	m, ok := r.Snapshot().Getters().Resolve("FPS2", ".")
	require.True(t, ok)
	value, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestRegistry_MemberKeyCollisionsAreSuffixedPerGroup(t *testing.T) {
	r := newTestRegistry()
	add := func(group string) {
		require.NoError(t, r.RegisterMember(consoletypes.MemberDescriptor{
			DeclaringKey: group, MemberKey: "speed", ValueType: reflect.TypeOf(0.0),
			CanRead: true, Get: func() any { return 1.0 },
			CanWrite: true, Set: func(any) error { return nil },
		}))
	}
	add("Player")
	add("Player")
	add("Camera")

	scope := r.Snapshot().Setters()
	g, ok := scope.Group("player")
	require.True(t, ok)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "speed", g.Members[0].Key)
	assert.Equal(t, "speed1", g.Members[1].Key)

	_, ok = scope.Resolve("Camera.speed", ".")
	assert.True(t, ok, "suffixing is scoped to the group")
	_, ok = r.Snapshot().Getters().Resolve("Player.speed1", ".")
	assert.True(t, ok)
}

func TestRegistry_MalformedMembers(t *testing.T) {
	get := func() any { return 0 }
	set := func(any) error { return nil }
	intType := reflect.TypeOf(0)

	tests := []struct {
		name string
		desc consoletypes.MemberDescriptor
	}{
		{name: "missing group", desc: consoletypes.MemberDescriptor{MemberKey: "x", ValueType: intType, CanRead: true, Get: get}},
		{name: "neither readable nor writable", desc: consoletypes.MemberDescriptor{DeclaringKey: "A", MemberKey: "x", ValueType: intType}},
		{name: "writable without setter", desc: consoletypes.MemberDescriptor{DeclaringKey: "A", MemberKey: "x", ValueType: intType, CanWrite: true}},
		{name: "readable without getter", desc: consoletypes.MemberDescriptor{DeclaringKey: "A", MemberKey: "x", ValueType: intType, CanRead: true, Set: set}},
		{name: "separator in key", desc: consoletypes.MemberDescriptor{DeclaringKey: "A.B", MemberKey: "x", ValueType: intType, CanRead: true, Get: get}},
		{name: "no value type", desc: consoletypes.MemberDescriptor{DeclaringKey: "A", MemberKey: "x", CanRead: true, Get: get}},
		{name: "bad default", desc: consoletypes.MemberDescriptor{DeclaringKey: "A", MemberKey: "x", ValueType: reflect.TypeOf(""), CanWrite: true, Set: set, Default: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRegistry()
			assert.ErrorIs(t, r.RegisterMember(tt.desc), ErrMalformedDescriptor)
		})
	}
}

func TestRegistry_RebuildSkipsMalformedAndSwaps(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "old", Handler: func() {}}))
	before := r.Snapshot()

	report, err := r.Rebuild(context.Background(), consoletypes.Descriptors{
		Commands: []consoletypes.CommandDescriptor{
			quitDescriptor(1000, false),
			{Key: "broken"},
			{Key: "echo", Handler: func(string) {}, Parameters: []consoletypes.Parameter{{Name: "text"}}},
		},
		Members: []consoletypes.MemberDescriptor{
			{DeclaringKey: "Time", MemberKey: "scale", ValueType: reflect.TypeOf(1.0), CanWrite: true, Set: func(any) error { return nil }},
			{DeclaringKey: "Time", MemberKey: "broken", ValueType: reflect.TypeOf(1.0), CanWrite: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Commands)
	assert.Equal(t, 2, report.Signatures)
	assert.Equal(t, 0, report.Getters)
	assert.Equal(t, 1, report.Setters)
	assert.Len(t, report.Skipped, 2)
	assert.ErrorIs(t, report.SkippedError(), ErrMalformedDescriptor)

	_, ok := r.ResolveKey("old")
	assert.False(t, ok, "rebuild replaces the registry")
	_, ok = before.ResolveKey("old")
	assert.True(t, ok, "previously taken snapshots are unaffected")
}

func TestRegistry_RebuildCancelledKeepsSnapshot(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "old", Handler: func() {}}))
	before := r.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Rebuild(ctx, consoletypes.Descriptors{
		Commands: []consoletypes.CommandDescriptor{quitDescriptor(1, false)},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Same(t, before, r.Snapshot())
}

func TestRegistry_ConcurrentReadsDuringWrites(t *testing.T) {
	r := newTestRegistry()
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = r.Register(consoletypes.CommandDescriptor{Key: fmt.Sprintf("cmd%d", i), Handler: func() {}})
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := r.Snapshot()
				for _, c := range snap.FindByPrefix("cmd") {
					_, ok := snap.ResolveKey(c.Key)
					assert.True(t, ok)
				}
			}
		}()
	}

	wg.Wait()
	assert.Len(t, r.Snapshot().Commands(), 50)
}

func TestSignature_Invoke(t *testing.T) {
	r := newTestRegistry()
	boom := errors.New("boom")
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{
		Key:        "ok",
		Handler:    func(n int) (int, error) { return n * 2, nil },
		Parameters: []consoletypes.Parameter{{Name: "n"}},
	}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "fail", Handler: func() error { return boom }}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "panic", Handler: func() { panic("bad") }}))

	cmd, _ := r.ResolveKey("ok")
	results, err := cmd.Signatures[0].Invoke([]reflect.Value{reflect.ValueOf(21)})
	require.NoError(t, err)
	assert.Equal(t, []any{42}, results)

	cmd, _ = r.ResolveKey("fail")
	results, err = cmd.Signatures[0].Invoke(nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)

	cmd, _ = r.ResolveKey("panic")
	_, err = cmd.Signatures[0].Invoke(nil)
	assert.ErrorContains(t, err, "panicked")
}

func TestSnapshot_List(t *testing.T) {
	r := newTestRegistry()
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "low", Handler: func() {}, Priority: 1}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "high", Handler: func() {}, Priority: 9}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "native", Handler: func() {}, Native: true}))
	require.NoError(t, r.Register(consoletypes.CommandDescriptor{Key: "hidden", Handler: func() {}, Priority: 100, DisableListing: true}))
	require.NoError(t, r.RegisterMember(consoletypes.MemberDescriptor{
		DeclaringKey: "Time", MemberKey: "scale", ValueType: reflect.TypeOf(1.0), Priority: 1, Shortcut: "ts",
		CanRead: true, Get: func() any { return 1.0 },
		CanWrite: true, Set: func(any) error { return nil }, Default: 1.0,
	}))

	entries := r.Snapshot().List(consoletypes.ListFilter{})
	var keys []string
	for _, e := range entries {
		keys = append(keys, e.Kind.String()+":"+e.Key)
	}
	assert.Equal(t, []string{"command:native", "command:high", "command:low", "getter:Time.scale", "setter:Time.scale"}, keys)
	assert.Equal(t, "/set Time.scale [float64 scale = 1]", entries[4].Usage)
	assert.Equal(t, "/get Time.scale", entries[3].Usage)

	withHidden := r.Snapshot().List(consoletypes.ListFilter{IncludeUnlisted: true})
	assert.Equal(t, "hidden", withHidden[1].Key)

	onlyMembers := r.Snapshot().List(consoletypes.ListFilter{Kinds: []consoletypes.EntryKind{consoletypes.EntryGetter}, Contains: "TS"})
	require.Len(t, onlyMembers, 1)
	assert.Equal(t, "ts", onlyMembers[0].Shortcut)
}
