package conversion

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/nerrad567/pmc-config/internal/pmc"
)

// Logger defines the logging interface used by the Engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Engine performs raw/real conversions for devices.
//
// An Engine is stateless apart from its logger and optional trace writer and
// may be reused for any number of devices.
type Engine struct {
	logger Logger
	trace  io.Writer
}

// NewEngine creates an engine without tracing.
func NewEngine() *Engine {
	return &Engine{logger: noopLogger{}}
}

// SetLogger sets the logger for the engine.
func (e *Engine) SetLogger(logger Logger) {
	e.logger = logger
}

// WithTrace returns a copy of the engine that writes a one-line description
// of every calculation to w. A nil w disables tracing.
func (e *Engine) WithTrace(w io.Writer) *Engine {
	cpy := *e
	cpy.trace = w
	return &cpy
}

// HasCoefficients reports whether the device has a usable M_VAL/R_EXP pair:
// both resolve and both parse as integers.
func (e *Engine) HasCoefficients(dev *pmc.Device) bool {
	_, _, err := e.coefficients(dev)
	return err == nil
}

// RawToReal converts a raw value string to a real value.
//
// The raw value is parsed as an integer when it has a 0x/0X prefix and as a
// float otherwise. Returns ErrMissingCoefficients or ErrConversion.
func (e *Engine) RawToReal(dev *pmc.Device, raw string) (float64, error) {
	rawVal, err := ParseRaw(raw)
	if err != nil {
		return 0, err
	}
	return e.RawToRealNumber(dev, rawVal)
}

// RawToRealNumber converts a numeric raw value to a real value.
func (e *Engine) RawToRealNumber(dev *pmc.Device, raw float64) (float64, error) {
	mVal, rExp, err := e.coefficients(dev)
	if err != nil {
		return 0, err
	}

	scale, err := pow10(rExp)
	if err != nil {
		return 0, err
	}
	result := (float64(mVal) * raw) * scale
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: (%d * %s) * 10^(%d) is not finite",
			ErrConversion, mVal, FormatReal(raw), rExp)
	}

	e.tracef("Calculation: (%d * %s) * 10^(%d) = %s",
		mVal, FormatReal(raw), rExp, FormatReal(result))
	e.logger.Debug("raw to real", "device", dev.Name, "m_val", mVal, "r_exp", rExp,
		"raw", raw, "real", result)
	return result, nil
}

// RealToRaw converts a real value string to the nearest raw integer.
//
// The real value is always parsed as a decimal float. Returns
// ErrMissingCoefficients, ErrDivisionByZero when M_VAL * 10^R_EXP is zero,
// or ErrConversion.
func (e *Engine) RealToRaw(dev *pmc.Device, value string) (int64, error) {
	mVal, rExp, err := e.coefficients(dev)
	if err != nil {
		return 0, err
	}

	realVal, err := parseDecimal(value)
	if err != nil {
		return 0, fmt.Errorf("%w: real value %q", ErrConversion, value)
	}

	if mVal == 0 {
		return 0, fmt.Errorf("%w: M_VAL is 0 for device %q", ErrDivisionByZero, dev.Name)
	}
	scale, err := pow10(rExp)
	if err != nil {
		return 0, err
	}
	denominator := float64(mVal) * scale
	if denominator == 0 {
		return 0, fmt.Errorf("%w: M_VAL * 10^R_EXP is 0 for device %q", ErrDivisionByZero, dev.Name)
	}
	if math.IsInf(denominator, 0) {
		return 0, fmt.Errorf("%w: %d * 10^(%d) overflows", ErrConversion, mVal, rExp)
	}

	quotient := realVal / denominator
	rounded := math.RoundToEven(quotient)
	if math.IsNaN(rounded) || rounded >= math.MaxInt64 || rounded < math.MinInt64 {
		return 0, fmt.Errorf("%w: %s / (%d * 10^(%d)) does not fit a raw value",
			ErrConversion, FormatReal(realVal), mVal, rExp)
	}
	raw := int64(rounded)

	e.tracef("Calculation: %s / (%d * 10^(%d)) = %s ≈ %d",
		FormatReal(realVal), mVal, rExp, FormatReal(quotient), raw)
	e.logger.Debug("real to raw", "device", dev.Name, "m_val", mVal, "r_exp", rExp,
		"real", realVal, "raw", raw)
	return raw, nil
}

// pow10 returns 10^exp. Exponents too large for a float64 are an error;
// very negative ones underflow to 0.
func pow10(exp int64) (float64, error) {
	if exp > math.MaxInt32 || exp < math.MinInt32 {
		if exp > 0 {
			return 0, fmt.Errorf("%w: 10^(%d) overflows", ErrConversion, exp)
		}
		return 0, nil
	}
	scale := math.Pow10(int(exp))
	if math.IsInf(scale, 0) {
		return 0, fmt.Errorf("%w: 10^(%d) overflows", ErrConversion, exp)
	}
	return scale, nil
}

// parseDecimal parses a decimal float. Hex float syntax is rejected.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// coefficients resolves and parses the device's scaling pair.
func (e *Engine) coefficients(dev *pmc.Device) (mVal, rExp int64, err error) {
	s, err := Coefficients(dev)
	if err != nil {
		return 0, 0, err
	}
	mVal, rExp, err = s.Parse()
	if err != nil {
		return 0, 0, err
	}
	return mVal, rExp, nil
}

func (e *Engine) tracef(format string, args ...any) {
	if e.trace == nil {
		return
	}
	fmt.Fprintf(e.trace, format+"\n", args...)
}

// Real values switch to exponent notation outside [1e-4, 1e16).
const (
	minFixedReal = 1e-4
	maxFixedReal = 1e16
)

// FormatReal formats a float as its shortest round-trip decimal. Integral
// values keep a ".0" suffix (20.0) and very small or large magnitudes use
// exponent notation (1e-05, 1e+16).
func FormatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < minFixedReal || abs >= maxFixedReal) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatRawHex formats a raw integer as lowercase hex with a 0x prefix.
// Negative values keep their sign after the prefix (0x-5).
func FormatRawHex(raw int64) string {
	return fmt.Sprintf("0x%x", raw)
}

// FormatRaw normalises a stored raw value to hex. Values that are not
// integers are returned unchanged.
func FormatRaw(value string) string {
	n, err := ParseInt(value)
	if err != nil {
		return value
	}
	return FormatRawHex(n)
}
