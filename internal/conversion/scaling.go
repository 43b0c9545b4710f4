package conversion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerrad567/pmc-config/internal/pmc"
)

// Coefficient variable names.
const (
	VarMVal = "M_VAL"
	VarRExp = "R_EXP"
)

// Scaling is a resolved coefficient pair, as stored in the document.
type Scaling struct {
	MVal  string
	RExp  string
	Scope pmc.Scope
}

// Coefficients resolves the M_VAL/R_EXP pair of a device.
//
// Device scope is used when it holds both variables. Otherwise both are
// looked up in SDR scope. Returns ErrMissingCoefficients when neither scope
// has a complete pair.
func Coefficients(dev *pmc.Device) (Scaling, error) {
	for _, scope := range []pmc.Scope{pmc.ScopeDevice, pmc.ScopeSDR} {
		m := dev.LookupIn(scope, VarMVal)
		e := dev.LookupIn(scope, VarRExp)
		if m.Found && e.Found {
			return Scaling{MVal: m.Value(), RExp: e.Value(), Scope: scope}, nil
		}
	}
	return Scaling{}, fmt.Errorf("%w: device %q", ErrMissingCoefficients, dev.Name)
}

// Parse returns the integer coefficients. Both accept a 0x/0X prefix for
// hexadecimal; decimal values may carry a sign.
func (s Scaling) Parse() (mVal, rExp int64, err error) {
	mVal, err = ParseInt(s.MVal)
	if err != nil {
		return 0, 0, fmt.Errorf("M_VAL: %w", err)
	}
	rExp, err = ParseInt(s.RExp)
	if err != nil {
		return 0, 0, fmt.Errorf("R_EXP: %w", err)
	}
	return mVal, rExp, nil
}

// hexDigits returns the digits after a 0x/0X prefix.
func hexDigits(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return "", false
}

// ParseInt parses an integer, base 16 with a 0x/0X prefix and base 10
// otherwise. Surrounding whitespace is ignored.
func ParseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if digits, ok := hexDigits(s); ok {
		u, err := parseHex(digits)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrConversion, s)
		}
		if u > 1<<63-1 {
			return 0, fmt.Errorf("%w: %q out of range", ErrConversion, s)
		}
		return int64(u), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrConversion, s)
	}
	return n, nil
}

// ParseRaw parses a raw value: an integer with a 0x/0X prefix, otherwise a
// decimal floating-point number.
func ParseRaw(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if digits, ok := hexDigits(s); ok {
		u, err := parseHex(digits)
		if err != nil {
			return 0, fmt.Errorf("%w: raw value %q", ErrConversion, s)
		}
		return float64(u), nil
	}
	f, err := parseDecimal(s)
	if err != nil {
		return 0, fmt.Errorf("%w: raw value %q", ErrConversion, s)
	}
	return f, nil
}

// parseHex parses unsigned hex digits; a sign after the prefix is rejected.
func parseHex(digits string) (uint64, error) {
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseUint(digits, 16, 64)
}
