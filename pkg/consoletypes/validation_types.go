// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the validation states and the proposal returned by the
// autocomplete engine on every keystroke.
package consoletypes

// ValidationState classifies a partial input line.
type ValidationState int

const (
	// ValidationNone means the line does not start with the command prefix.
	ValidationNone ValidationState = iota
	// ValidationValid means the line resolves to a complete invocation.
	ValidationValid
	// ValidationIncomplete means more input is required before the line can run.
	ValidationIncomplete
	// ValidationOptional means the line can run as typed and accepts more optional input.
	ValidationOptional
	// ValidationIncorrect means no command, member or overload accepts the line.
	ValidationIncorrect
	// ValidationCommandInfo means the line asks for information about a command.
	ValidationCommandInfo
)

// String returns the state name.
func (s ValidationState) String() string {
	switch s {
	case ValidationValid:
		return "Valid"
	case ValidationIncomplete:
		return "Incomplete"
	case ValidationOptional:
		return "Optional"
	case ValidationIncorrect:
		return "Incorrect"
	case ValidationCommandInfo:
		return "CommandInfo"
	default:
		return "None"
	}
}

// MarshalText encodes the state by name.
func (s ValidationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Invokable reports whether a line in this state would run if submitted.
func (s ValidationState) Invokable() bool {
	return s == ValidationValid || s == ValidationOptional
}

// Proposal is the result of evaluating a partial line.
type Proposal struct {
	// Description is a human-readable hint for the part being typed.
	Description string `json:"description" yaml:"description"`
	// Completion is text to append to the line, possibly empty.
	Completion string          `json:"completion" yaml:"completion"`
	State      ValidationState `json:"state" yaml:"state"`
}
