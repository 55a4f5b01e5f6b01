// Package builtin provides the demo command set and world members used by the
// gonsole shell and CLI.
package builtin

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gonsole/internal/discovery"
	"gonsole/pkg/consoletypes"
)

// Entity is the kind of thing spawn creates.
type Entity int

// Entity kinds.
const (
	EntityNone Entity = iota
	EntityPlayer
	EntityObject
)

// EntityValues are the enum members of Entity.
var EntityValues = []consoletypes.EnumValue{
	{Name: "None", Value: int64(EntityNone)},
	{Name: "Player", Value: int64(EntityPlayer)},
	{Name: "Object", Value: int64(EntityObject)},
}

// String returns the entity name.
func (e Entity) String() string {
	for _, v := range EntityValues {
		if v.Value == int64(e) {
			return v.Name
		}
	}
	return fmt.Sprintf("Entity(%d)", int(e))
}

// Host wires the demo commands to their side effects.
type Host struct {
	// Out receives command output.
	Out   io.Writer
	World *World
	// OnQuit is called by Quit; nil makes Quit a no-op.
	OnQuit func(secondsDelay int, logCountdown bool)
	// Help renders information for a key, or the listing when key is empty.
	Help func(key string) (string, error)
}

// Commands returns the demo command descriptors.
func (h *Host) Commands() []consoletypes.CommandDescriptor {
	return []consoletypes.CommandDescriptor{
		{
			Key:     "Quit",
			Handler: h.quit,
			Parameters: []consoletypes.Parameter{
				{Name: "secondsDelay", Optional: true, Default: 0},
				{Name: "logCountdown", Optional: true, Default: false},
			},
			Priority:    1000,
			Description: "Quits the application",
			Native:      true,
		},
		{
			Key:     "help",
			Handler: h.help,
			Parameters: []consoletypes.Parameter{{
				Name: "key", Optional: true, Default: "",
				Hint: &consoletypes.ParameterHint{Text: "command to describe", Show: consoletypes.ShowName},
			}},
			Priority:    900,
			Description: "Lists commands or describes one",
			Native:      true,
		},
		{
			Key:     "echo",
			Handler: h.echo,
			Parameters: []consoletypes.Parameter{{
				Name:        "text",
				Suggestions: &consoletypes.Suggestions{Values: []string{"hello", "world"}},
			}},
			Description: "Prints text",
		},
		discovery.Func("add", func(a, b int) int { return a + b }, "Adds two integers", "a", "b"),
		discovery.Func("add", func(a, b float64) float64 { return a + b }, "Adds two numbers", "a", "b"),
		{
			Key:     "spawn",
			Handler: h.spawn,
			Parameters: []consoletypes.Parameter{
				{Name: "kind", Enum: EntityValues},
				{Name: "count", Optional: true, Default: 1},
			},
			Description: "Spawns entities",
		},
		{
			Key:     "teleport",
			Handler: h.teleport,
			Parameters: []consoletypes.Parameter{
				{Name: "position", Hint: &consoletypes.ParameterHint{Text: "target position", Show: consoletypes.ShowAll}},
				{Name: "instant", Optional: true, Default: false},
			},
			Description: "Moves the player",
		},
		{
			Key:     "tint",
			Handler: h.tint,
			Parameters: []consoletypes.Parameter{
				{Name: "color", Optional: true, Default: consoletypes.Color{R: 1, G: 1, B: 1, A: 1}},
			},
			Description: "Colours the player",
		},
		{
			Key:         "time.reset",
			Handler:     h.resetTime,
			Description: "Resets the simulation clock",
		},
		{
			Key:            "fail",
			Handler:        func() error { return errors.New("deliberate failure") },
			Description:    "Returns an error",
			DisableListing: true,
		},
	}
}

// Provider returns the commands and world members as one provider.
func (h *Host) Provider() (consoletypes.DescriptorProvider, error) {
	providers := []consoletypes.DescriptorProvider{discovery.NewStaticProvider(h.Commands(), nil)}
	if h.World != nil {
		members, err := h.World.Providers()
		if err != nil {
			return nil, err
		}
		providers = append(providers, members...)
	}
	return discovery.Combine(providers...), nil
}

func (h *Host) printf(format string, args ...any) {
	if h.Out != nil {
		fmt.Fprintf(h.Out, format, args...)
	}
}

func (h *Host) quit(secondsDelay int, logCountdown bool) {
	if logCountdown {
		h.printf("Quitting in %d seconds\n", secondsDelay)
	}
	if h.OnQuit != nil {
		h.OnQuit(secondsDelay, logCountdown)
	}
}

func (h *Host) help(key string) (string, error) {
	if h.Help == nil {
		return "", errors.New("help is not available")
	}
	return h.Help(strings.TrimSpace(key))
}

func (h *Host) echo(text string) {
	h.printf("%s\n", text)
}

func (h *Host) spawn(kind Entity, count int) (string, error) {
	if kind == EntityNone {
		return "", errors.New("nothing to spawn")
	}
	if count < 1 {
		return "", fmt.Errorf("count must be positive, got %d", count)
	}
	total := 0
	if h.World != nil {
		h.World.Update(func(w *World) {
			w.Stats.Entities += count
			total = w.Stats.Entities
		})
	}
	return fmt.Sprintf("spawned %d %s (%d total)", count, kind, total), nil
}

func (h *Host) teleport(position consoletypes.Vector3, instant bool) (string, error) {
	if h.World == nil {
		return "", errors.New("no world loaded")
	}
	h.World.Update(func(w *World) { w.Player.Position = position })
	if instant {
		return "teleported to " + position.String(), nil
	}
	return "travelling to " + position.String(), nil
}

func (h *Host) tint(color consoletypes.Color) error {
	if h.World == nil {
		return errors.New("no world loaded")
	}
	h.World.Update(func(w *World) { w.Player.Tint = color })
	return nil
}

func (h *Host) resetTime() error {
	if h.World == nil {
		return errors.New("no world loaded")
	}
	h.World.Update(func(w *World) { w.Time = TimeGroup{Scale: 1} })
	return nil
}
