// Package console is the embeddable gonsole interpreter.
//
// A Console owns a command registry, a dispatcher and the autocomplete engine.
// Hosts register commands and members directly or hand in a DescriptorProvider
// that Rescan runs in the background:
//
//	c, err := console.New(console.WithProvider(provider))
//	if err != nil { ... }
//	if _, err := c.Rescan(ctx); err != nil { ... }
//	p := c.Propose("/Qu")      // completion "it", state Incomplete
//	inv := c.Execute("/Quit 5") // runs the handler
//
// Execute, Propose, Info and List are safe for concurrent use with each other
// and with Register and Rescan.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"gonsole/internal/commands"
	"gonsole/internal/discovery"
	"gonsole/internal/execution"
	"gonsole/internal/logger"
	"gonsole/internal/services"
	"gonsole/pkg/consoletypes"
)

// ErrNoProvider is returned by Rescan when the console was built without a provider.
var ErrNoProvider = errors.New("console has no descriptor provider")

// Option configures a Console.
type Option func(*options)

type options struct {
	settings consoletypes.Settings
	logger   *log.Logger
	provider consoletypes.DescriptorProvider
	scanIDs  func() string
}

// WithSettings replaces the default settings.
func WithSettings(s consoletypes.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger sets the logger handed to every component.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProvider sets the descriptor provider run by Rescan.
func WithProvider(p consoletypes.DescriptorProvider) Option {
	return func(o *options) { o.provider = p }
}

// WithScanIDs sets the generator for Rescan identifiers, e.g.
// discovery.SequentialIDs() for reproducible logs.
func WithScanIDs(f func() string) Option {
	return func(o *options) { o.scanIDs = f }
}

// lastProposal is only current while snap is the published snapshot.
type lastProposal struct {
	line     string
	proposal consoletypes.Proposal
	snap     *commands.Snapshot
}

// Console is a command interpreter instance.
type Console struct {
	registry     *commands.Registry
	dispatcher   *execution.Dispatcher
	services     *services.Registry
	autocomplete *services.AutoCompleteService
	help         *services.HelpService
	scanner      *discovery.Scanner

	last atomic.Pointer[lastProposal]
}

// New creates a console. Settings are validated; the registry starts empty.
func New(opts ...Option) (*Console, error) {
	o := options{settings: consoletypes.DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	componentLogger := func(prefix string) *log.Logger {
		if o.logger != nil {
			return o.logger.WithPrefix(prefix)
		}
		return logger.NewStyledLogger(prefix)
	}

	registry := commands.NewRegistry(o.settings, componentLogger("Registry"))
	c := &Console{
		registry:     registry,
		dispatcher:   execution.NewDispatcher(registry, componentLogger("Dispatcher")),
		services:     services.NewRegistry(),
		autocomplete: services.NewAutoCompleteService(registry),
		help:         services.NewHelpService(registry),
	}
	if o.provider != nil {
		c.scanner = discovery.NewScanner(o.provider, c, componentLogger("Discovery"))
		if o.scanIDs != nil {
			c.scanner.SetIDFunc(o.scanIDs)
		}
	}

	for _, svc := range []services.Service{c.autocomplete, c.help} {
		if err := c.services.RegisterService(svc); err != nil {
			return nil, err
		}
	}
	if err := c.services.InitializeAll(); err != nil {
		return nil, err
	}
	return c, nil
}

// Settings returns the console configuration.
func (c *Console) Settings() consoletypes.Settings {
	return c.registry.Settings()
}

// Services returns the console's service registry.
func (c *Console) Services() *services.Registry {
	return c.services
}

// Register adds one command signature.
func (c *Console) Register(desc consoletypes.CommandDescriptor) error {
	defer c.forget()
	return c.registry.Register(desc)
}

// RegisterMember adds one member.
func (c *Console) RegisterMember(desc consoletypes.MemberDescriptor) error {
	defer c.forget()
	return c.registry.RegisterMember(desc)
}

// Rebuild replaces the registry with descs in a single swap. It implements
// discovery.Publisher.
func (c *Console) Rebuild(ctx context.Context, descs consoletypes.Descriptors) (commands.BuildReport, error) {
	report, err := c.registry.Rebuild(ctx, descs)
	if err == nil {
		c.forget()
	}
	return report, err
}

// Rescan runs the provider and publishes the result, cancelling any scan in
// flight. A superseded scan returns an error wrapping discovery.ErrScanCanceled.
func (c *Console) Rescan(ctx context.Context) (discovery.Result, error) {
	if c.scanner == nil {
		return discovery.Result{}, ErrNoProvider
	}
	return c.scanner.Scan(ctx)
}

// Execute runs a finalized line.
func (c *Console) Execute(line string) consoletypes.Invocation {
	return c.dispatcher.Execute(line)
}

// Propose evaluates a partial line and remembers the result for IsInvokable.
func (c *Console) Propose(line string) consoletypes.Proposal {
	snap := c.registry.Snapshot()
	p := c.autocomplete.Propose(line)
	c.last.Store(&lastProposal{line: line, proposal: p, snap: snap})
	return p
}

// IsInvokable reports whether the line last passed to Propose would run if
// submitted now. It is false before the first Propose and after the registry
// changes.
func (c *Console) IsInvokable() bool {
	last := c.current()
	return last != nil && last.proposal.State.Invokable()
}

// LastProposal returns the line and result of the most recent Propose.
func (c *Console) LastProposal() (string, consoletypes.Proposal, bool) {
	last := c.current()
	if last == nil {
		return "", consoletypes.Proposal{}, false
	}
	return last.line, last.proposal, true
}

// Complete implements the readline auto-completer contract over Propose.
func (c *Console) Complete(line []rune, pos int) ([][]rune, int) {
	return c.autocomplete.Do(line, pos)
}

// Info returns the information text for a command or reserved member key.
func (c *Console) Info(key string) (string, error) {
	return c.help.Info(key)
}

// List returns the filtered listing.
func (c *Console) List(filter consoletypes.ListFilter) ([]consoletypes.ListEntry, error) {
	return c.help.List(filter)
}

// Keys returns every key a user can type, for suggestions.
func (c *Console) Keys() []string {
	return c.help.Keys()
}

func (c *Console) forget() {
	c.last.Store(nil)
}

// current returns the remembered proposal unless the registry has published
// another snapshot since it was made.
func (c *Console) current() *lastProposal {
	last := c.last.Load()
	if last == nil || last.snap != c.registry.Snapshot() {
		return nil
	}
	return last
}
