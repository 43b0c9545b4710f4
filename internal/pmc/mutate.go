package pmc

import (
	"fmt"
	"strings"
)

// SetResult describes what SetValue changed.
type SetResult struct {
	// Variable is the name as stored in its scope (SDR prefix removed).
	Variable string

	// Scope is where the value was written.
	Scope Scope

	// Previous is the value before the update; empty when Created.
	Previous string

	// Created is true when a new device-scope pair was appended.
	Created bool
}

// SetValue writes value to variable on the device.
//
// A variable starting with SdrPrefix must already exist in SDR scope:
// ErrNoSdrSection is returned if the device has no SDR and
// ErrVariableNotFound if the variable is missing. SDR pairs are never created.
//
// Any other variable is updated in device scope if present there, otherwise
// in SDR scope if present there. When it exists in neither, a new pair is
// appended to device scope.
func (d *Device) SetValue(variable, value string) (SetResult, error) {
	if bare, ok := strings.CutPrefix(variable, SdrPrefix); ok {
		if d.Sdr == nil {
			return SetResult{}, fmt.Errorf("%w: device %q", ErrNoSdrSection, d.Name)
		}
		l := d.LookupIn(ScopeSDR, bare)
		if !l.Found {
			return SetResult{}, fmt.Errorf("%w: SDR config %q in device %q", ErrVariableNotFound, bare, d.Name)
		}
		return overwrite(l, bare, value), nil
	}

	if l := d.Lookup(variable); l.Found {
		return overwrite(l, variable, value), nil
	}

	d.appendConfig(NewConfigPair(variable, value))
	return SetResult{Variable: variable, Scope: ScopeDevice, Created: true}, nil
}

func overwrite(l Lookup, variable, value string) SetResult {
	res := SetResult{Variable: variable, Scope: l.Scope, Previous: l.Pair.Value}
	l.Pair.Value = value
	return res
}

// appendConfig adds a device-scope pair as the last child of the device.
func (d *Device) appendConfig(p *ConfigPair) {
	d.Configs = append(d.Configs, p)
	if d.children != nil {
		d.children = appendIndented(d.children, p)
	}
}
