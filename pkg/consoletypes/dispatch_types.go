// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the outcome of dispatching a finalized input line.
package consoletypes

// DispatchStatus tells the host what happened to a submitted line.
type DispatchStatus int

const (
	// StatusNoMatch means nothing was invoked.
	StatusNoMatch DispatchStatus = iota
	// StatusInvoked means a command handler or member accessor ran.
	StatusInvoked
	// StatusInfo means the line asked for command information.
	StatusInfo
)

// String returns the status name.
func (s DispatchStatus) String() string {
	switch s {
	case StatusInvoked:
		return "invoked"
	case StatusInfo:
		return "info"
	default:
		return "no-match"
	}
}

// Invocation reports the result of Execute.
type Invocation struct {
	Status DispatchStatus
	Kind   EntryKind
	// Key is the resolved command key or Group.Member path.
	Key  string
	Args []any
	// Results holds the handler's non-error return values, or the getter value.
	Results []any
	// Err is the error returned by the handler or setter, or a recovered panic.
	Err error
	// Info carries the rendered command information for StatusInfo.
	Info string
}

// Invoked reports whether a handler or accessor ran.
func (i Invocation) Invoked() bool {
	return i.Status == StatusInvoked
}
