package builtin

import (
	"sync"

	"gonsole/internal/discovery"
	"gonsole/pkg/consoletypes"
)

// TimeGroup holds simulation clock settings.
type TimeGroup struct {
	Scale  float64 `console:"shortcut=ts,desc=Simulation speed,default=1"`
	Paused bool    `console:"desc=Pauses the simulation,default=false"`
}

// StatsGroup holds read-only counters.
type StatsGroup struct {
	FPS      int `console:"shortcut=fps,desc=Frames per second,readonly"`
	Entities int `console:"desc=Spawned entities,readonly"`
}

// PlayerGroup holds the player state.
type PlayerGroup struct {
	Name     string               `console:"desc=Display name"`
	Position consoletypes.Vector3 `console:"shortcut=pos,desc=World position"`
	Tint     consoletypes.Color   `console:"desc=Body colour,default=1 1 1 1"`
	God      bool                 `console:"shortcut=god,desc=Invulnerability,native"`
}

// World is the demo host state. Its groups are exposed as console members and
// mutated by the demo commands under the same lock.
type World struct {
	mu     sync.Mutex
	Time   TimeGroup
	Stats  StatsGroup
	Player PlayerGroup
}

// NewWorld returns a world with its starting values.
func NewWorld() *World {
	return &World{
		Time:   TimeGroup{Scale: 1},
		Stats:  StatsGroup{FPS: 60},
		Player: PlayerGroup{Name: "player", Tint: consoletypes.Color{R: 1, G: 1, B: 1, A: 1}},
	}
}

// Providers returns one member provider per group.
func (w *World) Providers() ([]consoletypes.DescriptorProvider, error) {
	groups := []struct {
		name   string
		target any
	}{
		{"Time", &w.Time},
		{"Stats", &w.Stats},
		{"Player", &w.Player},
	}

	providers := make([]consoletypes.DescriptorProvider, 0, len(groups))
	for _, g := range groups {
		p, err := discovery.NewReflectProvider(g.name, g.target)
		if err != nil {
			return nil, err
		}
		p.SetLocker(&w.mu)
		providers = append(providers, p)
	}
	return providers, nil
}

// Update runs fn with the world locked.
func (w *World) Update(fn func(w *World)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w)
}
