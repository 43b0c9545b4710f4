// Package conversion converts between raw sensor register values and real
// (physical) values for PMC devices.
//
// The scaling is linear and defined per device by two integer coefficients:
//
//	real = (M_VAL * raw) * 10^R_EXP
//	raw  = round(real / (M_VAL * 10^R_EXP))
//
// Coefficients are resolved from the device with Coefficients: when both
// M_VAL and R_EXP exist in device scope they are used together; otherwise
// both must exist in SDR scope. A pair is never assembled across scopes.
//
// Rounding of real→raw results is round-half-to-even.
//
// # Usage
//
//	engine := conversion.NewEngine()
//	real, err := engine.WithTrace(os.Stdout).RawToReal(dev, "0x64")
//	if errors.Is(err, conversion.ErrMissingCoefficients) {
//	    // show the raw value only
//	}
package conversion
