package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/pmc-config/internal/conversion"
	"github.com/nerrad567/pmc-config/internal/pmc"
)

// DefaultRealColumn is the column at which real values start.
const DefaultRealColumn = 32

const notAvailable = "N/A"

// Converter converts raw values to real values for a device.
type Converter interface {
	HasCoefficients(dev *pmc.Device) bool
	RawToReal(dev *pmc.Device, raw string) (float64, error)
}

// Aligned appends the real value in parentheses to base, padded so it
// starts at column. At least one space separates the two.
func Aligned(base, realVal string, column int) string {
	pad := column - utf8.RuneCountInString(base)
	if pad < 1 {
		pad = 1
	}
	return base + strings.Repeat(" ", pad) + "(" + realVal + ")"
}

// writer collects the first write error so report code can print freely.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}

func (w *writer) println(s string) {
	w.printf("%s\n", s)
}

func fieldOr(dev *pmc.Device, tag, value string) string {
	if dev.HasField(tag) {
		return value
	}
	return notAvailable
}

// DeviceList writes the numbered device listing of a document.
func DeviceList(out io.Writer, path string, devices []*pmc.Device) error {
	w := &writer{w: out}
	w.printf("\nFound %d devices in %s\n", len(devices), path)
	w.println(strings.Repeat("-", 80))
	for i, d := range devices {
		w.printf("%d. %s\n", i+1, fieldOr(d, pmc.TagName, d.Name))
		w.printf("   Class: %s\n", fieldOr(d, pmc.TagDevClass, d.DevClass))
		w.printf("   Dev Name: %s\n", fieldOr(d, pmc.TagDevName, d.DevName))
	}
	return w.err
}

// DeviceInfo writes everything known about a device: identity, SDR name,
// glyph geometry, device configs and SDR configs.
func DeviceInfo(out io.Writer, dev *pmc.Device, conv Converter, column int) error {
	w := &writer{w: out}

	w.printf("\nDevice: %s\n", dev.Name)
	w.println(strings.Repeat("=", 50))
	if dev.HasField(pmc.TagDevClass) {
		w.printf("Class: %s\n", dev.DevClass)
	}
	if dev.HasField(pmc.TagName) {
		w.printf("Name: %s\n", dev.Name)
	}
	if dev.HasField(pmc.TagDevName) {
		w.printf("Dev Name: %s\n", dev.DevName)
	}
	if dev.Sdr != nil && dev.Sdr.HasName() {
		w.printf("SDR Name: %s\n", dev.Sdr.Name)
	}

	if g := dev.Glyph(); g != nil {
		w.println("Device Glyph:")
		for _, f := range []struct {
			label string
			value *string
		}{
			{"Top Left X", g.TopLeftX},
			{"Top Left Y", g.TopLeftY},
			{"Width", g.Width},
			{"Height", g.Height},
		} {
			if f.value != nil {
				w.printf("  %s: %s\n", f.label, *f.value)
			}
		}
	}

	w.printf("\n\n")
	w.println("Configurations:")
	w.println(strings.Repeat("-", 30))
	for _, p := range dev.Configs {
		if p.Complete() {
			w.printf("  %s: %s\n", p.Variable, p.Value)
		}
	}

	if dev.Sdr != nil {
		w.println("\nSDR:")
		w.println(strings.Repeat("-", 30))
		convert := conv.HasCoefficients(dev)
		for _, p := range dev.Sdr.Configs {
			if !p.Complete() {
				continue
			}
			w.println(ThresholdLine(dev, p, conv, convert, column))
		}
	}
	return w.err
}

// ThresholdLine formats one SDR pair as "  VAR: value", with the real value
// aligned at column when the pair is a threshold parameter and convert is
// set. A value that does not convert is shown raw only.
func ThresholdLine(dev *pmc.Device, p *pmc.ConfigPair, conv Converter, convert bool, column int) string {
	base := fmt.Sprintf("  %s: %s", p.Variable, p.Value)
	if !convert || !conversion.IsThresholdParam(p.Variable) {
		return base
	}
	realVal, err := conv.RawToReal(dev, p.Value)
	if err != nil {
		return base
	}
	return Aligned(base, conversion.FormatReal(realVal), column)
}

// Value writes the result of a get. Threshold parameters that convert are
// shown as raw hex and real value; anything else as "VAR = value". A missing
// variable is reported and returned as pmc.ErrVariableNotFound.
func Value(out io.Writer, dev *pmc.Device, variable string, conv Converter) error {
	w := &writer{w: out}

	value, ok := dev.Value(variable)
	if !ok {
		w.printf("Configuration '%s' not found for device '%s'\n", variable, dev.Name)
		if w.err != nil {
			return w.err
		}
		return fmt.Errorf("%w: %q in device %q", pmc.ErrVariableNotFound, variable, dev.Name)
	}

	if conversion.IsThresholdParam(variable) {
		realVal, err := conv.RawToReal(dev, value)
		if err == nil {
			w.printf("%s:\n", variable)
			w.printf("  raw = %s\n", conversion.FormatRaw(value))
			w.printf("  real = %s\n", conversion.FormatReal(realVal))
			return w.err
		}
		w.printf("Error: %v\n", err)
	}

	w.printf("%s = %s\n", variable, value)
	return w.err
}

// Updated writes the confirmation line for one applied change.
func Updated(out io.Writer, res pmc.SetResult, value string) error {
	var err error
	switch {
	case res.Created:
		_, err = fmt.Fprintf(out, "Added new config %s = %s\n", res.Variable, value)
	case res.Scope == pmc.ScopeSDR:
		_, err = fmt.Fprintf(out, "Updated SDR config %s to %s\n", res.Variable, value)
	default:
		_, err = fmt.Fprintf(out, "Updated %s to %s\n", res.Variable, value)
	}
	return err
}
