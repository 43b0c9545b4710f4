package pmc

import "encoding/xml"

// Element and field names used by the PMC format.
const (
	TagDevice   = "device"
	TagName     = "name"
	TagDevClass = "dev_class"
	TagDevName  = "dev_name"
	TagGlyph    = "device_glyph"
	TagConfig   = "config"
	TagVariable = "variable"
	TagValue    = "value"
	TagSdr      = "sdr"

	TagTopLeftX = "topleft_x"
	TagTopLeftY = "topleft_y"
	TagWidth    = "width"
	TagHeight   = "height"
)

// SdrPrefix marks a variable name as addressing SDR scope only.
const SdrPrefix = "SDR_"

// Document is an in-memory PMC file.
//
// Devices lists every <device> element below the root in document order.
// The remaining fields hold the original node layout used for re-encoding.
type Document struct {
	Devices []*Device

	path   string
	prolog []node
	root   *element
	epilog []node
}

// Path returns the file the document was loaded from, or "" if it was parsed
// from memory.
func (doc *Document) Path() string {
	return doc.path
}

// Device is a single <device> record.
//
// Name, DevClass and DevName hold the text of the corresponding child
// elements; HasField reports whether the element was present at all.
type Device struct {
	Name     string
	DevClass string
	DevName  string

	// Configs are the device-scope pairs in document order.
	Configs []*ConfigPair

	// Sdr is the nested sensor data record, nil when absent.
	Sdr *Sdr

	glyph    *element
	present  map[string]bool
	start    xml.StartElement
	children []node
}

// HasField reports whether the device element contains the named child
// (name, dev_class, dev_name, device_glyph or sdr).
func (d *Device) HasField(tag string) bool {
	switch tag {
	case TagSdr:
		return d.Sdr != nil
	case TagGlyph:
		return d.glyph != nil
	}
	if d.present == nil {
		// Built in code rather than decoded: non-empty fields count as present.
		switch tag {
		case TagName:
			return d.Name != ""
		case TagDevClass:
			return d.DevClass != ""
		case TagDevName:
			return d.DevName != ""
		}
		return false
	}
	return d.present[tag]
}

// Glyph is the graphical placement block of a device. The values are opaque
// and only used for display; the block itself is written back untouched.
type Glyph struct {
	TopLeftX *string
	TopLeftY *string
	Width    *string
	Height   *string
}

// Glyph returns the device's placement block, or nil if it has none.
func (d *Device) Glyph() *Glyph {
	if d.glyph == nil {
		return nil
	}
	return &Glyph{
		TopLeftX: d.glyph.childText(TagTopLeftX),
		TopLeftY: d.glyph.childText(TagTopLeftY),
		Width:    d.glyph.childText(TagWidth),
		Height:   d.glyph.childText(TagHeight),
	}
}

// Sdr is a sensor data record nested in a device.
type Sdr struct {
	Name string

	// Configs are the SDR-scope pairs in document order.
	Configs []*ConfigPair

	hasName  bool
	start    xml.StartElement
	children []node
}

// HasName reports whether the SDR carries a <name> element.
func (s *Sdr) HasName() bool {
	return s.hasName || s.Name != ""
}

// ConfigPair is a single <config> variable/value entry.
//
// A pair decoded without a <variable> or <value> child is kept for
// re-encoding but is skipped by every lookup and mutation.
type ConfigPair struct {
	Variable string
	Value    string

	noVariable bool
	noValue    bool
	start      xml.StartElement
	children   []node
}

// NewConfigPair creates a complete pair.
func NewConfigPair(variable, value string) *ConfigPair {
	return &ConfigPair{Variable: variable, Value: value}
}

// Complete reports whether the pair has both a variable and a value.
func (p *ConfigPair) Complete() bool {
	return !p.noVariable && !p.noValue
}

// Scope identifies which set of pairs a variable was found in.
type Scope int

// Variable scopes.
const (
	ScopeNone Scope = iota
	ScopeDevice
	ScopeSDR
)

// String returns the scope name.
func (s Scope) String() string {
	switch s {
	case ScopeDevice:
		return "device"
	case ScopeSDR:
		return "sdr"
	default:
		return "none"
	}
}

// Lookup is the result of resolving a variable on a device.
// The zero value means "not found".
type Lookup struct {
	Found bool
	Scope Scope
	Pair  *ConfigPair
}

// Value returns the stored value, or "" when not found.
func (l Lookup) Value() string {
	if !l.Found {
		return ""
	}
	return l.Pair.Value
}
