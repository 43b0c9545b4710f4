package conversion

// Threshold parameters. Values of these SDR variables are stored raw and
// shown or entered as real values.
const (
	NominalReading      = "NOMINAL_READING"
	NominalMax          = "NOMINAL_MAX"
	NominalMin          = "NOMINAL_MIN"
	SenMax              = "SEN_MAX"
	SenMin              = "SEN_MIN"
	UpperNonRecoverable = "UPPER_NON_RECOVERABLE"
	UpperCritical       = "UPPER_CRITICAL"
	UpperNonCritical    = "UPPER_NON_CRITICAL"
	LowerNonRecoverable = "LOWER_NON_RECOVERABLE"
	LowerCritical       = "LOWER_CRITICAL"
	LowerNonCritical    = "LOWER_NON_CRITICAL"
)

// thresholdParams is the set of variables that get automatic conversion.
var thresholdParams = map[string]struct{}{
	NominalReading:      {},
	NominalMax:          {},
	NominalMin:          {},
	SenMax:              {},
	SenMin:              {},
	UpperNonRecoverable: {},
	UpperCritical:       {},
	UpperNonCritical:    {},
	LowerNonRecoverable: {},
	LowerCritical:       {},
	LowerNonCritical:    {},
}

// IsThresholdParam reports whether variable is a threshold parameter.
// The match is exact: SDR_UPPER_CRITICAL is not a threshold parameter.
func IsThresholdParam(variable string) bool {
	_, ok := thresholdParams[variable]
	return ok
}

// ThresholdParams returns the threshold parameter names in no particular
// order.
func ThresholdParams() []string {
	out := make([]string, 0, len(thresholdParams))
	for p := range thresholdParams {
		out = append(out, p)
	}
	return out
}
