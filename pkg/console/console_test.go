package console

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonsole/internal/commands/builtin"
	"gonsole/internal/discovery"
	"gonsole/internal/logger"
	"gonsole/pkg/consoletypes"
)

type quitCall struct {
	delay     int
	countdown bool
}

func newDemoConsole(t *testing.T) (*Console, *builtin.World, *[]quitCall, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	var calls []quitCall
	world := builtin.NewWorld()
	host := &builtin.Host{
		Out:   &out,
		World: world,
		OnQuit: func(delay int, countdown bool) {
			calls = append(calls, quitCall{delay, countdown})
		},
	}
	provider, err := host.Provider()
	require.NoError(t, err)

	c, err := New(WithProvider(provider), WithLogger(logger.Discard()))
	require.NoError(t, err)
	host.Help = c.Info

	_, err = c.Rescan(context.Background())
	require.NoError(t, err)
	return c, world, &calls, &out
}

func TestNew_InvalidSettings(t *testing.T) {
	settings := consoletypes.DefaultSettings()
	settings.SetterKey = settings.GetterKey
	_, err := New(WithSettings(settings), WithLogger(logger.Discard()))
	assert.Error(t, err)
}

func TestRescan_WithoutProvider(t *testing.T) {
	c, err := New(WithLogger(logger.Discard()))
	require.NoError(t, err)
	_, err = c.Rescan(context.Background())
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestConsole_Quit(t *testing.T) {
	c, _, calls, out := newDemoConsole(t)

	tests := []struct {
		line string
		want quitCall
	}{
		{line: "/Quit", want: quitCall{0, false}},
		{line: "/quit 5 true", want: quitCall{5, true}},
		{line: "/Quit abc", want: quitCall{0, false}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			*calls = nil
			inv := c.Execute(tt.line)
			require.True(t, inv.Invoked())
			require.Len(t, *calls, 1)
			assert.Equal(t, tt.want, (*calls)[0])
		})
	}
	assert.Contains(t, out.String(), "Quitting in 5 seconds")

	assert.False(t, c.Execute("Quit").Invoked(), "the prefix is required")
}

func TestConsole_Commands(t *testing.T) {
	c, world, _, out := newDemoConsole(t)

	inv := c.Execute("/add 1 2")
	require.NoError(t, inv.Err)
	assert.Equal(t, []any{3}, inv.Results)

	inv = c.Execute("/add 1,5 2")
	require.NoError(t, inv.Err)
	assert.Equal(t, []any{3.5}, inv.Results)

	inv = c.Execute("/spawn Player 2")
	require.NoError(t, inv.Err)
	assert.Equal(t, []any{"spawned 2 Player (2 total)"}, inv.Results)
	assert.Error(t, c.Execute("/spawn None").Err)

	inv = c.Execute("/teleport 1 2 3 true")
	require.NoError(t, inv.Err)
	assert.Equal(t, consoletypes.Vector3{X: 1, Y: 2, Z: 3}, world.Player.Position)

	c.Execute(`/echo "hello there"`)
	assert.Contains(t, out.String(), "hello there\n")

	inv = c.Execute("/fail")
	assert.EqualError(t, inv.Err, "deliberate failure")

	inv = c.Execute("/help quit")
	require.NoError(t, inv.Err)
	require.Len(t, inv.Results, 1)
	assert.Contains(t, inv.Results[0], "Quits the application")

	inv = c.Execute("/quit?")
	assert.Equal(t, consoletypes.StatusInfo, inv.Status)
	assert.Contains(t, inv.Info, "/Quit [int secondsDelay = 0] [bool logCountdown = false]")
}

func TestConsole_Members(t *testing.T) {
	c, world, _, _ := newDemoConsole(t)

	inv := c.Execute("/get fps")
	require.NoError(t, inv.Err)
	assert.Equal(t, "Stats.FPS", inv.Key)
	assert.Equal(t, []any{60}, inv.Results)

	inv = c.Execute("/set ts 2,5")
	require.NoError(t, inv.Err)
	assert.Equal(t, 2.5, world.Time.Scale)

	inv = c.Execute("/set Time.Scale")
	require.NoError(t, inv.Err)
	assert.Equal(t, 1.0, world.Time.Scale, "default applies without a value")

	assert.False(t, c.Execute("/set fps 30").Invoked(), "read-only members have no setter")
	assert.False(t, c.Execute("/set Player.Name").Invoked(), "no default, no value")
}

func TestConsole_ProposalTiedToSnapshot(t *testing.T) {
	c, _, _, _ := newDemoConsole(t)

	c.Propose("/spawn Player 3")
	require.True(t, c.IsInvokable())

	// A swap that lands after the proposal was stored, without going through
	// the console, still invalidates it.
	require.NoError(t, c.registry.Register(consoletypes.CommandDescriptor{Key: "noop", Handler: func() {}}))
	assert.False(t, c.IsInvokable())
	_, _, ok := c.LastProposal()
	assert.False(t, ok)

	stale := c.registry.Snapshot()
	require.NoError(t, c.registry.Register(consoletypes.CommandDescriptor{Key: "noop2", Handler: func() {}}))
	c.last.Store(&lastProposal{
		line:     "/spawn Player 3",
		proposal: consoletypes.Proposal{State: consoletypes.ValidationValid},
		snap:     stale,
	})
	assert.False(t, c.IsInvokable(), "a proposal made against an older snapshot is not current")

	c.Propose("/spawn Player 3")
	assert.True(t, c.IsInvokable())
	line, _, ok := c.LastProposal()
	require.True(t, ok)
	assert.Equal(t, "/spawn Player 3", line)
}

func TestConsole_ProposeAndIsInvokable(t *testing.T) {
	c, world, _, _ := newDemoConsole(t)
	assert.False(t, c.IsInvokable())

	p := c.Propose("/Qu")
	assert.Equal(t, "it", p.Completion)
	assert.Equal(t, consoletypes.ValidationIncomplete, p.State)
	assert.False(t, c.IsInvokable())

	p = c.Propose("/spawn Play")
	assert.Equal(t, "er", p.Completion)
	assert.Equal(t, consoletypes.ValidationIncomplete, p.State)

	p = c.Propose("/spawn Player")
	assert.Equal(t, consoletypes.ValidationOptional, p.State, "count is optional")
	assert.True(t, c.IsInvokable())

	p = c.Propose("/spawn Player 3")
	assert.Equal(t, consoletypes.ValidationValid, p.State)
	assert.True(t, c.IsInvokable())

	line, last, ok := c.LastProposal()
	require.True(t, ok)
	assert.Equal(t, "/spawn Player 3", line)
	assert.Equal(t, p, last)

	require.NoError(t, c.Register(consoletypes.CommandDescriptor{Key: "noop", Handler: func() {}}))
	assert.False(t, c.IsInvokable(), "registry changes drop the cached proposal")

	// Leftover tokens fail the proposal, yet Execute binds what it can and
	// ignores the rest.
	p = c.Propose("/set Time.Scale 2 3")
	assert.Equal(t, consoletypes.ValidationIncorrect, p.State)
	assert.False(t, c.IsInvokable())
	inv := c.Execute("/set Time.Scale 2 3")
	require.True(t, inv.Invoked())
	require.NoError(t, inv.Err)
	assert.Equal(t, 2.0, world.Time.Scale)

	newLine, offset := c.Complete([]rune("/tele"), 5)
	assert.Equal(t, [][]rune{[]rune("port")}, newLine)
	assert.Equal(t, 5, offset)
}

func TestConsole_InfoListKeys(t *testing.T) {
	c, _, _, _ := newDemoConsole(t)

	entries, err := c.List(consoletypes.ListFilter{Kinds: []consoletypes.EntryKind{consoletypes.EntryCommand}})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "Quit", entries[0].Key)
	for _, e := range entries {
		assert.NotEqual(t, "fail", e.Key, "unlisted commands stay hidden")
	}

	_, err = c.Info("nope")
	assert.Error(t, err)

	keys := c.Keys()
	assert.Contains(t, keys, "teleport")
	assert.Contains(t, keys, "get")
}

func TestConsole_ConcurrentRescan(t *testing.T) {
	c, _, _, _ := newDemoConsole(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := c.Rescan(context.Background())
				if err != nil && !errors.Is(err, discovery.ErrScanCanceled) {
					t.Errorf("unexpected rescan error: %v", err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Propose("/tele")
				c.Execute("/get fps")
			}
		}()
	}
	wg.Wait()

	inv := c.Execute("/get fps")
	assert.True(t, inv.Invoked())
}
