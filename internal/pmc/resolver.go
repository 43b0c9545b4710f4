package pmc

import (
	"fmt"
	"strings"
)

// Device returns the first device whose <name> equals name exactly.
// Devices without a name never match.
func (doc *Document) Device(name string) (*Device, error) {
	if name != "" {
		for _, d := range doc.Devices {
			if d.HasField(TagName) && d.Name == name {
				return d, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// DuplicateNames returns device names that occur more than once, in order of
// first appearance. Lookups by such a name resolve to the first device.
func (doc *Document) DuplicateNames() []string {
	seen := make(map[string]int, len(doc.Devices))
	var dups []string
	for _, d := range doc.Devices {
		if d.Name == "" {
			continue
		}
		seen[d.Name]++
		if seen[d.Name] == 2 { //nolint:mnd // second sighting marks a duplicate
			dups = append(dups, d.Name)
		}
	}
	return dups
}

// findPair returns the first complete pair named variable.
func findPair(pairs []*ConfigPair, variable string) *ConfigPair {
	for _, p := range pairs {
		if p.Complete() && p.Variable == variable {
			return p
		}
	}
	return nil
}

// sdrConfigs returns the SDR-scope pairs, or nil when the device has no SDR.
func (d *Device) sdrConfigs() []*ConfigPair {
	if d.Sdr == nil {
		return nil
	}
	return d.Sdr.Configs
}

// LookupIn resolves variable in a single scope, without prefix handling.
func (d *Device) LookupIn(scope Scope, variable string) Lookup {
	var pairs []*ConfigPair
	switch scope {
	case ScopeDevice:
		pairs = d.Configs
	case ScopeSDR:
		pairs = d.sdrConfigs()
	default:
		return Lookup{}
	}
	if p := findPair(pairs, variable); p != nil {
		return Lookup{Found: true, Scope: scope, Pair: p}
	}
	return Lookup{}
}

// Lookup resolves variable with scope precedence.
//
// A variable starting with SdrPrefix is searched in SDR scope only, with the
// prefix removed. Any other variable is searched in device scope first and
// then in SDR scope.
func (d *Device) Lookup(variable string) Lookup {
	if bare, ok := strings.CutPrefix(variable, SdrPrefix); ok {
		return d.LookupIn(ScopeSDR, bare)
	}
	if l := d.LookupIn(ScopeDevice, variable); l.Found {
		return l
	}
	return d.LookupIn(ScopeSDR, variable)
}

// Value returns the stored value of variable using Lookup precedence.
func (d *Device) Value(variable string) (string, bool) {
	l := d.Lookup(variable)
	return l.Value(), l.Found
}

// SdrValue returns the value of a bare variable from SDR scope only.
func (d *Device) SdrValue(variable string) (string, bool) {
	l := d.LookupIn(ScopeSDR, variable)
	return l.Value(), l.Found
}

// EffectiveConfig returns the flattened configuration of the device:
// device-scope pairs as stored, followed by every SDR pair under
// SdrPrefix + variable.
func (d *Device) EffectiveConfig() []ConfigPair {
	out := make([]ConfigPair, 0, len(d.Configs)+len(d.sdrConfigs()))
	for _, p := range d.Configs {
		if p.Complete() {
			out = append(out, ConfigPair{Variable: p.Variable, Value: p.Value})
		}
	}
	for _, p := range d.sdrConfigs() {
		if p.Complete() {
			out = append(out, ConfigPair{Variable: SdrPrefix + p.Variable, Value: p.Value})
		}
	}
	return out
}

// EffectiveConfigMap returns EffectiveConfig as a map. When a variable
// occurs more than once the first occurrence is kept.
func (d *Device) EffectiveConfigMap() map[string]string {
	pairs := d.EffectiveConfig()
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, ok := m[p.Variable]; !ok {
			m[p.Variable] = p.Value
		}
	}
	return m
}
