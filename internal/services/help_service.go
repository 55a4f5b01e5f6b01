package services

import (
	"fmt"

	"gonsole/pkg/consoletypes"
)

// HelpService provides command information and listings read from the current
// registry snapshot.
type HelpService struct {
	source      SnapshotSource
	initialized bool
}

// NewHelpService creates a new HelpService instance
func NewHelpService(source SnapshotSource) *HelpService {
	return &HelpService{source: source}
}

// Name returns the service name "help" for registration
func (h *HelpService) Name() string {
	return "help"
}

// Initialize checks the service has a registry to read from.
func (h *HelpService) Initialize() error {
	if h.source == nil {
		return fmt.Errorf("help service has no registry")
	}
	h.initialized = true
	return nil
}

// Info returns the information block for a command key or a reserved member key.
func (h *HelpService) Info(key string) (string, error) {
	if !h.initialized {
		return "", fmt.Errorf("help service not initialized")
	}
	text, ok := h.source.Snapshot().Info(key)
	if !ok {
		return "", fmt.Errorf("unknown command: %s", key)
	}
	return text, nil
}

// List returns the filtered listing, native first, then by priority.
func (h *HelpService) List(filter consoletypes.ListFilter) ([]consoletypes.ListEntry, error) {
	if !h.initialized {
		return nil, fmt.Errorf("help service not initialized")
	}
	return h.source.Snapshot().List(filter), nil
}

// Keys returns every key a user can type: commands with at least one
// autocompletable signature, then the reserved member keys that have members.
func (h *HelpService) Keys() []string {
	if !h.initialized {
		return nil
	}
	snap := h.source.Snapshot()
	settings := snap.Settings()

	var keys []string
	for _, c := range snap.Commands() {
		if c.AutoCompletable() {
			keys = append(keys, c.Key)
		}
	}
	if snap.Getters().Len() > 0 {
		keys = append(keys, settings.GetterKey)
	}
	if snap.Setters().Len() > 0 {
		keys = append(keys, settings.SetterKey)
	}
	return keys
}
