package pmc

import (
	"strings"
	"testing"
)

// testPMC is a small board file used across the package tests.
const testPMC = `<?xml version='1.0' encoding='utf-8'?>
<!-- generated by board tool -->
<pmc version="2">
  <device>
    <name>psu0_vin</name>
    <dev_class>sensor</dev_class>
    <dev_name>PSU0 Input Voltage</dev_name>
    <device_glyph>
      <topleft_x>10</topleft_x>
      <topleft_y>20</topleft_y>
      <width>100</width>
      <height>40</height>
    </device_glyph>
    <config>
      <variable>M_VAL</variable>
      <value>2</value>
    </config>
    <config>
      <variable>R_EXP</variable>
      <value>-1</value>
    </config>
    <config>
      <variable>BUS</variable>
      <value>0x3</value>
    </config>
    <sdr>
      <name>PSU0_VIN</name>
      <config>
        <variable>UPPER_CRITICAL</variable>
        <value>0x64</value>
      </config>
      <config>
        <variable>BUS</variable>
        <value>7</value>
      </config>
      <config>
        <variable>LWR_T_MASK</variable>
        <value>0x3</value>
      </config>
    </sdr>
  </device>
  <group label="fans">
    <device>
      <name>fan0</name>
      <dev_class>fan</dev_class>
      <config>
        <variable>RPM_DIV</variable>
        <value>4</value>
      </config>
    </device>
  </group>
  <device>
    <name>psu0_vin</name>
    <dev_class>duplicate</dev_class>
  </device>
  <device>
    <dev_class>anonymous</dev_class>
  </device>
</pmc>
`

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return doc
}

func mustDevice(t *testing.T, doc *Document, name string) *Device {
	t.Helper()
	d, err := doc.Device(name)
	if err != nil {
		t.Fatalf("Device(%q) error = %v", name, err)
	}
	return d
}

func encodeString(t *testing.T, doc *Document) string {
	t.Helper()
	var sb strings.Builder
	if err := doc.Encode(&sb); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return sb.String()
}
