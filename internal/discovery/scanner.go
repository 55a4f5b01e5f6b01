// Package discovery produces registry descriptors and publishes them.
//
// A Scanner runs one provider pass at a time. Starting a scan cancels the scan
// in flight and waits for it to finish before the new one proceeds, so at most
// one build ever reaches the registry and a cancelled build is never published.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"gonsole/internal/commands"
	"gonsole/internal/logger"
	"gonsole/pkg/consoletypes"
)

// ErrScanCanceled is returned by a scan that was superseded or whose context ended.
var ErrScanCanceled = errors.New("scan canceled")

// Publisher receives the descriptors of a finished scan.
type Publisher interface {
	Rebuild(ctx context.Context, descs consoletypes.Descriptors) (commands.BuildReport, error)
}

// Result describes a published scan.
type Result struct {
	ID       string
	Report   commands.BuildReport
	Duration time.Duration
}

// IDFunc generates scan identifiers.
type IDFunc func() string

// SequentialIDs returns an IDFunc producing stable UUID-shaped identifiers,
// 00000001-0000-4000-8000-000000000001 and so on, for reproducible logs.
func SequentialIDs() IDFunc {
	var n atomic.Uint64
	return func() string {
		id := n.Add(1)
		return fmt.Sprintf("%08x-0000-4000-8000-%012x", id, id)
	}
}

type scan struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Scanner runs provider passes against a publisher, one at a time.
type Scanner struct {
	provider consoletypes.DescriptorProvider
	target   Publisher
	logger   *log.Logger
	newID    IDFunc

	// run holds one token; a scan owns it while its provider and publish run.
	run chan struct{}

	mu      sync.Mutex
	current *scan
}

// NewScanner creates a scanner. A nil logger selects the styled "Discovery" logger.
func NewScanner(provider consoletypes.DescriptorProvider, target Publisher, l *log.Logger) *Scanner {
	if l == nil {
		l = logger.NewStyledLogger("Discovery")
	}
	return &Scanner{
		provider: provider,
		target:   target,
		logger:   l,
		newID:    uuid.NewString,
		run:      make(chan struct{}, 1),
	}
}

// SetIDFunc replaces the scan identifier generator. Nil restores random UUIDs.
func (s *Scanner) SetIDFunc(f IDFunc) {
	if f == nil {
		f = uuid.NewString
	}
	s.mu.Lock()
	s.newID = f
	s.mu.Unlock()
}

// Scan runs the provider and publishes its descriptors. Any scan already in
// flight is cancelled first, and the provider only starts once every earlier
// provider pass and publish has returned. A scan that is
// superseded, or whose ctx ends, returns an error wrapping ErrScanCanceled and
// leaves the published registry untouched.
func (s *Scanner) Scan(ctx context.Context) (Result, error) {
	scanCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	cur := &scan{id: s.newID(), cancel: cancel, done: make(chan struct{})}
	prev := s.current
	s.current = cur
	s.mu.Unlock()

	defer func() {
		cancel()
		close(cur.done)
		s.mu.Lock()
		if s.current == cur {
			s.current = nil
		}
		s.mu.Unlock()
	}()

	scanLog := s.logger.With("scan", shortID(cur.id))
	if prev != nil {
		scanLog.Debug("Cancelling previous scan", "previous", shortID(prev.id))
		prev.cancel()
	}

	select {
	case s.run <- struct{}{}:
	case <-scanCtx.Done():
		return Result{ID: cur.id}, s.canceled(scanLog, scanCtx.Err())
	}
	defer func() { <-s.run }()
	if err := scanCtx.Err(); err != nil {
		return Result{ID: cur.id}, s.canceled(scanLog, err)
	}

	start := time.Now()
	descs, err := s.provider.Descriptors(scanCtx)
	if err != nil {
		if scanCtx.Err() != nil {
			return Result{ID: cur.id}, s.canceled(scanLog, err)
		}
		scanLog.Error("Discovery failed", "error", err)
		return Result{ID: cur.id}, fmt.Errorf("discovery failed: %w", err)
	}

	report, err := s.target.Rebuild(scanCtx, descs)
	if err != nil {
		if scanCtx.Err() != nil {
			return Result{ID: cur.id}, s.canceled(scanLog, err)
		}
		return Result{ID: cur.id}, fmt.Errorf("publish failed: %w", err)
	}

	result := Result{ID: cur.id, Report: report, Duration: time.Since(start)}
	scanLog.Debug("Scan published",
		"commands", report.Commands,
		"members", report.Getters+report.Setters,
		"skipped", len(report.Skipped),
		"duration", result.Duration)
	return result, nil
}

// Cancel stops the scan in flight, if any, and waits for it to return.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return
	}
	cur.cancel()
	<-cur.done
}

// InFlight returns the ID of the running scan.
func (s *Scanner) InFlight() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.id, true
}

func shortID(id string) string {
	return id[:min(8, len(id))]
}

func (s *Scanner) canceled(l *log.Logger, cause error) error {
	l.Debug("Scan canceled", "cause", cause)
	return fmt.Errorf("%w: %w", ErrScanCanceled, cause)
}
