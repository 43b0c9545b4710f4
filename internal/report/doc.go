// Package report renders PMC documents and devices as operator-facing text.
//
// Every function writes to an io.Writer and returns the first write error.
// Threshold parameters are shown with their real value aligned to a fixed
// column when the device has conversion coefficients.
package report
