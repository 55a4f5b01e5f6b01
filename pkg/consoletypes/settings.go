// Package consoletypes defines the shared types of the gonsole command interpreter.
// This file contains the immutable settings snapshot consumed by the registry,
// the dispatcher and the autocomplete engine.
package consoletypes

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultNativeBoost is added to the priority of native signatures to form their hidden priority.
const DefaultNativeBoost = 1 << 20

// Settings is the configuration snapshot. It is passed by value and never mutated
// after construction.
type Settings struct {
	// Prefix must start every command line, e.g. "/". May be empty.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// InfoOperator appended to a key asks for command information, e.g. "?".
	InfoOperator string `mapstructure:"info_operator" yaml:"info_operator"`
	// GetterKey and SetterKey are the reserved member pseudo-commands.
	GetterKey string `mapstructure:"getter_key" yaml:"getter_key"`
	SetterKey string `mapstructure:"setter_key" yaml:"setter_key"`
	// GroupSeparator splits grouped keys and Group.Member paths.
	GroupSeparator string `mapstructure:"group_separator" yaml:"group_separator"`
	// NumericBoolProcessing lets 0/non-zero integers stand for booleans.
	NumericBoolProcessing bool `mapstructure:"numeric_bool_processing" yaml:"numeric_bool_processing"`
	// LogOnLoad logs a summary every time a registry snapshot is published.
	LogOnLoad bool `mapstructure:"log_on_load" yaml:"log_on_load"`
	// NativeBoost is the hidden priority bonus of native signatures.
	NativeBoost int `mapstructure:"native_boost" yaml:"native_boost"`
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		Prefix:                "/",
		InfoOperator:          "?",
		GetterKey:             "get",
		SetterKey:             "set",
		GroupSeparator:        ".",
		NumericBoolProcessing: true,
		LogOnLoad:             false,
		NativeBoost:           DefaultNativeBoost,
	}
}

// Validate checks that the settings can drive a console.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.GetterKey) == "" {
		errs = append(errs, errors.New("getter key cannot be empty"))
	}
	if strings.TrimSpace(s.SetterKey) == "" {
		errs = append(errs, errors.New("setter key cannot be empty"))
	}
	if strings.EqualFold(s.GetterKey, s.SetterKey) {
		errs = append(errs, fmt.Errorf("getter and setter keys must differ (both %q)", s.GetterKey))
	}
	if strings.Contains(s.Prefix, " ") {
		errs = append(errs, fmt.Errorf("prefix %q cannot contain spaces", s.Prefix))
	}
	if strings.Contains(s.InfoOperator, " ") {
		errs = append(errs, fmt.Errorf("info operator %q cannot contain spaces", s.InfoOperator))
	}
	if s.GroupSeparator == "" {
		errs = append(errs, errors.New("group separator cannot be empty"))
	}
	if s.NativeBoost < 0 {
		errs = append(errs, fmt.Errorf("native boost must not be negative, got %d", s.NativeBoost))
	}
	return errors.Join(errs...)
}
