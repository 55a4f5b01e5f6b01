// Package commands provides command and member registration for gonsole.
// It keeps the registry as an immutable snapshot that is replaced wholesale on
// every write, so lookups never take a lock and never see a partial build.
package commands

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"gonsole/internal/logger"
	"gonsole/pkg/consoletypes"
)

// BuildReport summarises one Rebuild.
type BuildReport struct {
	Commands   int
	Signatures int
	Getters    int
	Setters    int
	// Skipped holds one error per descriptor that was rejected.
	Skipped []error
}

// Registry publishes registry snapshots. Readers call Snapshot (or the lookup
// helpers) concurrently with writers; writers are serialized.
type Registry struct {
	settings consoletypes.Settings
	logger   *log.Logger
	writeMu  sync.Mutex
	current  atomic.Pointer[Snapshot]
}

// NewRegistry creates an empty registry. A nil logger selects the styled
// "Registry" component logger.
func NewRegistry(settings consoletypes.Settings, l *log.Logger) *Registry {
	if l == nil {
		l = logger.NewStyledLogger("Registry")
	}
	r := &Registry{settings: settings, logger: l}
	r.current.Store(newSnapshot(settings))
	return r
}

// Settings returns the registry configuration.
func (r *Registry) Settings() consoletypes.Settings {
	return r.settings
}

// Snapshot returns the currently published snapshot.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Register adds one command signature. Registering an existing key (any case)
// appends an overload.
func (r *Registry) Register(desc consoletypes.CommandDescriptor) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	b := newBuilder(r.current.Load().clone(), r.logger)
	if err := b.addCommand(desc); err != nil {
		return err
	}
	r.current.Store(b.snap)
	return nil
}

// RegisterMember adds one member to the getter and/or setter scope.
func (r *Registry) RegisterMember(desc consoletypes.MemberDescriptor) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	b := newBuilder(r.current.Load().clone(), r.logger)
	if err := b.addMember(desc); err != nil {
		return err
	}
	r.current.Store(b.snap)
	return nil
}

// Rebuild builds a fresh snapshot from descs and publishes it in one swap.
// Malformed descriptors are skipped and reported. If ctx is cancelled before the
// swap, the published snapshot is left untouched and ctx's error is returned.
func (r *Registry) Rebuild(ctx context.Context, descs consoletypes.Descriptors) (BuildReport, error) {
	b := newBuilder(newSnapshot(r.settings), r.logger)
	var report BuildReport

	for _, d := range descs.Commands {
		if err := ctx.Err(); err != nil {
			return BuildReport{}, err
		}
		if err := b.addCommand(d); err != nil {
			r.logger.Warn("Skipping command descriptor", "error", err)
			report.Skipped = append(report.Skipped, err)
		}
	}
	for _, d := range descs.Members {
		if err := ctx.Err(); err != nil {
			return BuildReport{}, err
		}
		if err := b.addMember(d); err != nil {
			r.logger.Warn("Skipping member descriptor", "error", err)
			report.Skipped = append(report.Skipped, err)
		}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := ctx.Err(); err != nil {
		return BuildReport{}, err
	}
	r.current.Store(b.snap)

	report.Commands, report.Signatures, report.Getters, report.Setters = b.snap.Stats()
	if r.settings.LogOnLoad {
		r.logger.Info("Registry loaded",
			"commands", report.Commands,
			"signatures", report.Signatures,
			"getters", report.Getters,
			"setters", report.Setters,
			"skipped", len(report.Skipped))
	}
	return report, nil
}

// ResolveKey finds a command by case-insensitive exact key in the current snapshot.
func (r *Registry) ResolveKey(key string) (*Command, bool) {
	return r.Snapshot().ResolveKey(key)
}

// FindByPrefix ranks key candidates for prefix in the current snapshot.
func (r *Registry) FindByPrefix(prefix string) []KeyCandidate {
	return r.Snapshot().FindByPrefix(prefix)
}

// SkippedError joins a report's skip errors for callers that want one error value.
func (br BuildReport) SkippedError() error {
	if len(br.Skipped) == 0 {
		return nil
	}
	return fmt.Errorf("%d descriptors skipped: %w", len(br.Skipped), errors.Join(br.Skipped...))
}
