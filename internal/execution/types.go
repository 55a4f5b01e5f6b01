// Package execution resolves finalized command lines against a registry
// snapshot and invokes the matching handler or member accessor. Each Execute
// call walks a small phase machine; nothing is shared between calls.
package execution

// Phase is the step a dispatch is in.
type Phase int

const (
	// PhaseReceived - line received, nothing checked yet
	PhaseReceived Phase = iota
	// PhaseParsing - prefix stripped and line tokenized
	PhaseParsing
	// PhaseResolving - key matched against reserved keys and commands
	PhaseResolving
	// PhaseBinding - tokens coerced into positional arguments
	PhaseBinding
	// PhaseInvoking - handler or accessor running
	PhaseInvoking
	// PhaseCompleted - something ran, or info was produced
	PhaseCompleted
	// PhaseNoMatch - nothing ran
	PhaseNoMatch
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseReceived:
		return "Received"
	case PhaseParsing:
		return "Parsing"
	case PhaseResolving:
		return "Resolving"
	case PhaseBinding:
		return "Binding"
	case PhaseInvoking:
		return "Invoking"
	case PhaseCompleted:
		return "Completed"
	case PhaseNoMatch:
		return "NoMatch"
	default:
		return "Unknown"
	}
}
