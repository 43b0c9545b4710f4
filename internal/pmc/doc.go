// Package pmc provides the document model for PMC device descriptor files.
//
// A PMC file is an XML document holding any number of <device> records. Each
// device carries identity fields, an ordered list of device-level
// <config> variable/value pairs, and an optional nested <sdr> (Sensor Data
// Record) with its own pairs.
//
//	<pmc>
//	  <device>
//	    <name>psu0_vin</name>
//	    <dev_class>sensor</dev_class>
//	    <dev_name>PSU0 Input Voltage</dev_name>
//	    <config><variable>M_VAL</variable><value>2</value></config>
//	    <config><variable>R_EXP</variable><value>-1</value></config>
//	    <sdr>
//	      <name>PSU0_VIN</name>
//	      <config><variable>UPPER_CRITICAL</variable><value>0x64</value></config>
//	    </sdr>
//	  </device>
//	</pmc>
//
// # Scopes
//
// Variables live in one of two scopes. Device scope holds the pairs directly
// under <device>; SDR scope holds the pairs under <sdr>. Lookups take an
// optional "SDR_" prefix:
//
//   - "SDR_FOO" searches SDR scope only, for FOO.
//   - "FOO" searches device scope, then falls back to SDR scope.
//
// Duplicate variables are allowed by the format. The first pair in document
// order always wins.
//
// # Round-trip
//
// Decoding keeps every node of the file (whitespace, comments, unknown
// elements) in its original position. Encoding writes the same structure back
// with only mutated value text changed and newly created pairs appended, so
// a save never reorders or drops content it did not touch.
//
// # Usage
//
//	store := pmc.NewStore()
//	doc, err := store.Load("board.pmc")
//	if err != nil {
//	    return err
//	}
//	dev, err := doc.Device("psu0_vin")
//	if err != nil {
//	    return err
//	}
//	if _, err := dev.SetValue("SDR_UPPER_CRITICAL", "0x6e"); err != nil {
//	    return err
//	}
//	return store.Save(doc, true)
package pmc
