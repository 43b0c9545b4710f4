package pmc

import "errors"

// Domain errors for the pmc package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, pmc.ErrDeviceNotFound) {
//	    // handle unknown device
//	}
var (
	// ErrFileNotFound is returned when the PMC file does not exist.
	ErrFileNotFound = errors.New("pmc: file not found")

	// ErrParse is returned when the PMC file is not well-formed XML.
	ErrParse = errors.New("pmc: parse error")

	// ErrDeviceNotFound is returned when no device carries the requested name.
	ErrDeviceNotFound = errors.New("pmc: device not found")

	// ErrVariableNotFound is returned when an SDR variable to update does not exist.
	ErrVariableNotFound = errors.New("pmc: variable not found")

	// ErrNoSdrSection is returned when an SDR operation targets a device without <sdr>.
	ErrNoSdrSection = errors.New("pmc: device has no SDR section")

	// ErrPersist is returned when the document cannot be written back to disk.
	ErrPersist = errors.New("pmc: persist failed")
)
