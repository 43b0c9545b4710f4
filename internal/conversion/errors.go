package conversion

import "errors"

// Domain errors for the conversion package.
var (
	// ErrMissingCoefficients is returned when M_VAL and R_EXP cannot be
	// resolved as a pair from either scope of the device.
	ErrMissingCoefficients = errors.New("conversion: M_VAL and R_EXP not found in device or SDR config")

	// ErrConversion is returned when a value or coefficient cannot be parsed,
	// or the result does not fit.
	ErrConversion = errors.New("conversion: invalid value")

	// ErrDivisionByZero is returned when M_VAL * 10^R_EXP is zero.
	ErrDivisionByZero = errors.New("conversion: division by zero")
)
