package threshold

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nerrad567/pmc-config/internal/conversion"
	"github.com/nerrad567/pmc-config/internal/pmc"
)

const sessionPMC = `<?xml version="1.0" encoding="UTF-8"?>
<pmc>
  <device>
    <name>psu0_vin</name>
    <config>
      <variable>M_VAL</variable>
      <value>2</value>
    </config>
    <config>
      <variable>R_EXP</variable>
      <value>-1</value>
    </config>
    <sdr>
      <name>PSU0_VIN</name>
      <config>
        <variable>UPPER_CRITICAL</variable>
        <value>0x64</value>
      </config>
      <config>
        <variable>NOMINAL_READING</variable>
        <value>0x3c</value>
      </config>
      <config>
        <variable>LOWER_CRITICAL</variable>
        <value>0x1e</value>
      </config>
      <config>
        <variable>LWR_T_MASK</variable>
        <value>0x3</value>
      </config>
    </sdr>
  </device>
  <device>
    <name>fan0</name>
    <sdr>
      <config>
        <variable>UPPER_CRITICAL</variable>
        <value>5000</value>
      </config>
    </sdr>
  </device>
  <device>
    <name>bare</name>
  </device>
</pmc>
`

type fakePersister struct {
	applied []Applied
	calls   int
	err     error
}

func (p *fakePersister) Persist(_ context.Context, applied []Applied) error {
	p.calls++
	p.applied = applied
	return p.err
}

func loadDevice(t *testing.T, name string) *pmc.Device {
	t.Helper()
	doc, err := pmc.Parse(strings.NewReader(sessionPMC))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	dev, err := doc.Device(name)
	if err != nil {
		t.Fatalf("Device(%q) error = %v", name, err)
	}
	return dev
}

func newTestSession(t *testing.T, dev *pmc.Device, persister Persister, lines ...string) (*Session, *ScriptedPrompter, *strings.Builder) {
	t.Helper()
	prompter := NewScriptedPrompter(lines...)
	out := &strings.Builder{}
	s, err := NewSession(dev, Options{
		Converter: conversion.NewEngine(),
		Prompter:  prompter,
		Persister: persister,
		Out:       out,
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s, prompter, out
}

func TestSession_ApplyChanges(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	persister := &fakePersister{}
	// LOWER_CRITICAL, UPPER_CRITICAL, then the three masks, then confirm.
	s, prompter, out := newTestSession(t, dev, persister, "5", "", "", "0x18", "", "Y")

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantPrompts := []string{
		"LOWER_CRITICAL [current: 6.0]: ",
		"UPPER_CRITICAL [current: 20.0]: ",
		"LWR_T_MASK (Lower Threshold Reading Mask) [current: 0x3]: ",
		"UPR_T_MASK (Upper Threshold Reading Mask) [current: Not set]: ",
		"S_R_T_MASK (Settable/Readable Threshold Mask) [current: Not set]: ",
		"Apply these changes? (y/N): ",
	}
	if strings.Join(prompter.Prompts, "\n") != strings.Join(wantPrompts, "\n") {
		t.Errorf("prompts =\n%s\nwant\n%s", strings.Join(prompter.Prompts, "\n"), strings.Join(wantPrompts, "\n"))
	}

	wantChanges := []Change{
		{Variable: "LOWER_CRITICAL", Value: "0x19"},
		{Variable: "UPR_T_MASK", Value: "0x18"},
	}
	if len(outcome.Changes) != len(wantChanges) {
		t.Fatalf("Changes = %v, want %v", outcome.Changes, wantChanges)
	}
	for i, c := range wantChanges {
		if outcome.Changes[i] != c {
			t.Errorf("Changes[%d] = %v, want %v", i, outcome.Changes[i], c)
		}
	}
	if outcome.Applied != 2 || !outcome.Saved || outcome.Cancelled {
		t.Errorf("outcome = %+v, want 2 applied, saved", outcome)
	}
	if s.State() != StateDone {
		t.Errorf("State() = %v, want done", s.State())
	}

	if v, _ := dev.SdrValue("LOWER_CRITICAL"); v != "0x19" {
		t.Errorf("LOWER_CRITICAL = %q, want 0x19", v)
	}
	l := dev.Lookup("UPR_T_MASK")
	if !l.Found || l.Scope != pmc.ScopeDevice || l.Value() != "0x18" {
		t.Errorf("UPR_T_MASK lookup = %+v, want new device pair 0x18", l)
	}

	if persister.calls != 1 || len(persister.applied) != 2 {
		t.Fatalf("persister calls = %d with %d changes, want 1 with 2", persister.calls, len(persister.applied))
	}
	if r := persister.applied[0].Result; r.Scope != pmc.ScopeSDR || r.Previous != "0x1e" {
		t.Errorf("applied[0].Result = %+v, want SDR update from 0x1e", r)
	}
	if !persister.applied[1].Result.Created {
		t.Error("applied[1].Result.Created = false, want true")
	}

	text := out.String()
	for _, want := range []string{
		"Interactive Threshold Configuration for: psu0_vin",
		"  UPPER_CRITICAL: 0x64          (20.0)\n",
		"  NOMINAL_READING: 0x3c         (12.0)\n",
		"  LOWER_CRITICAL: 0x1e          (6.0)\n",
		"  -> Converting 5 to 0x19\n",
		"  LOWER_CRITICAL: 0x19\n",
		"Updated SDR config LOWER_CRITICAL to 0x19\n",
		"Added new config UPR_T_MASK = 0x18\n",
		"Successfully applied 2 changes!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "LWR_T_MASK: 0x3 ") {
		t.Error("mask listed among current threshold values")
	}
}

func TestSession_Decline(t *testing.T) {
	for _, answer := range []string{"n", "", "yes"} {
		t.Run("answer "+answer, func(t *testing.T) {
			dev := loadDevice(t, "psu0_vin")
			persister := &fakePersister{}
			s, _, out := newTestSession(t, dev, persister, "5", "", "", "", "", answer)

			outcome, err := s.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !outcome.Cancelled || outcome.Applied != 0 || outcome.Saved {
				t.Errorf("outcome = %+v, want cancelled", outcome)
			}
			if v, _ := dev.SdrValue("LOWER_CRITICAL"); v != "0x1e" {
				t.Errorf("LOWER_CRITICAL = %q, want unchanged 0x1e", v)
			}
			if persister.calls != 0 {
				t.Errorf("persister called %d times", persister.calls)
			}
			if !strings.Contains(out.String(), "Changes cancelled.") {
				t.Errorf("output missing cancellation:\n%s", out.String())
			}
		})
	}
}

func TestSession_NoChanges(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	s, prompter, out := newTestSession(t, dev, &fakePersister{}, "", "", "", "", "")

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcome.Changes) != 0 || outcome.Cancelled {
		t.Errorf("outcome = %+v, want no changes", outcome)
	}
	if len(prompter.Prompts) != 5 {
		t.Errorf("prompted %d times, want 5 (no confirmation)", len(prompter.Prompts))
	}
	if !strings.Contains(out.String(), "No changes to apply.") {
		t.Errorf("output missing no-change notice:\n%s", out.String())
	}
}

func TestSession_EndOfInput(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"at first threshold", nil},
		{"at mask", []string{"5", "21"}},
		{"at confirmation", []string{"5", "", "", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := loadDevice(t, "psu0_vin")
			persister := &fakePersister{}
			s, _, _ := newTestSession(t, dev, persister, tt.lines...)

			outcome, err := s.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !outcome.Cancelled {
				t.Errorf("outcome = %+v, want cancelled", outcome)
			}
			if v, _ := dev.SdrValue("LOWER_CRITICAL"); v != "0x1e" {
				t.Errorf("LOWER_CRITICAL = %q, want unchanged", v)
			}
			if persister.calls != 0 {
				t.Errorf("persister called %d times", persister.calls)
			}
		})
	}
}

func TestSession_ConversionFailureSkips(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	s, _, out := newTestSession(t, dev, &fakePersister{}, "high", "12.5", "", "", "", "y")

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(outcome.Changes) != 1 || outcome.Changes[0] != (Change{Variable: "UPPER_CRITICAL", Value: "0x3e"}) {
		t.Errorf("Changes = %v, want only UPPER_CRITICAL=0x3e", outcome.Changes)
	}
	if !strings.Contains(out.String(), "Failed to convert high") {
		t.Errorf("output missing conversion error:\n%s", out.String())
	}
}

func TestSession_NoCoefficientsVerbatim(t *testing.T) {
	dev := loadDevice(t, "fan0")
	s, prompter, out := newTestSession(t, dev, &fakePersister{}, "4500", "", "", "", "y")

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prompter.Prompts[0] != "UPPER_CRITICAL [current: 5000]: " {
		t.Errorf("first prompt = %q", prompter.Prompts[0])
	}
	if len(outcome.Changes) != 1 || outcome.Changes[0].Value != "4500" {
		t.Errorf("Changes = %v, want UPPER_CRITICAL=4500", outcome.Changes)
	}
	if v, _ := dev.SdrValue("UPPER_CRITICAL"); v != "4500" {
		t.Errorf("UPPER_CRITICAL = %q, want 4500", v)
	}
	if !strings.Contains(out.String(), "  UPPER_CRITICAL: 5000\n") {
		t.Errorf("current listing should have no real value:\n%s", out.String())
	}
}

func TestSession_PersistFailure(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	persister := &fakePersister{err: pmc.ErrPersist}
	s, _, out := newTestSession(t, dev, persister, "5", "", "", "", "", "y")

	outcome, err := s.Run(context.Background())
	if !errors.Is(err, pmc.ErrPersist) {
		t.Fatalf("Run() error = %v, want ErrPersist", err)
	}
	if outcome.Saved || outcome.Applied != 1 {
		t.Errorf("outcome = %+v, want 1 applied, not saved", outcome)
	}
	if strings.Contains(out.String(), "Successfully applied") {
		t.Error("success reported after persist failure")
	}
}

func TestSession_PartialApply(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	persister := &fakePersister{}
	prompter := NewScriptedPrompter("5", "", "", "0x18", "", "y")
	out := &strings.Builder{}
	s, err := NewSession(dev, Options{
		Converter: conversion.NewEngine(),
		Prompter:  prompter,
		Persister: persister,
		Out:       out,
		Apply: func(d *pmc.Device, variable, value string) (pmc.SetResult, error) {
			if variable == "UPR_T_MASK" {
				return pmc.SetResult{}, fmt.Errorf("%w: %q", pmc.ErrVariableNotFound, variable)
			}
			return d.SetValue(variable, value)
		},
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if outcome.Applied != 1 || len(outcome.Changes) != 2 || outcome.Saved || outcome.Cancelled {
		t.Errorf("outcome = %+v, want 1 of 2 applied, not saved", outcome)
	}
	if persister.calls != 0 {
		t.Errorf("persister called %d times, want 0", persister.calls)
	}
	if v, _ := dev.SdrValue("LOWER_CRITICAL"); v != "0x19" {
		t.Errorf("LOWER_CRITICAL = %q, want 0x19 kept in memory", v)
	}
	if _, ok := dev.Value("UPR_T_MASK"); ok {
		t.Error("UPR_T_MASK written despite failure")
	}

	text := out.String()
	for _, want := range []string{
		"Updated SDR config LOWER_CRITICAL to 0x19\n",
		"\nWarning: Only 1/2 changes were applied.\n",
		"Check errors above.\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "Successfully applied") {
		t.Error("success reported after partial apply")
	}
}

func TestSession_UnparseableCoefficientsVerbatim(t *testing.T) {
	doc, err := pmc.Parse(strings.NewReader(`<pmc><device><name>odd</name>
<config><variable>M_VAL</variable><value>abc</value></config>
<config><variable>R_EXP</variable><value>-1</value></config>
<sdr><config><variable>UPPER_CRITICAL</variable><value>0x64</value></config></sdr>
</device></pmc>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	dev, err := doc.Device("odd")
	if err != nil {
		t.Fatalf("Device() error = %v", err)
	}

	s, prompter, _ := newTestSession(t, dev, nil, "0x70", "", "", "", "y")
	outcome, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if prompter.Prompts[0] != "UPPER_CRITICAL [current: 0x64]: " {
		t.Errorf("first prompt = %q, want raw current value", prompter.Prompts[0])
	}
	if outcome.Applied != 1 {
		t.Errorf("outcome = %+v, want 1 applied", outcome)
	}
	if v, _ := dev.SdrValue("UPPER_CRITICAL"); v != "0x70" {
		t.Errorf("UPPER_CRITICAL = %q, want verbatim 0x70", v)
	}
}

func TestNewSession_NoSdr(t *testing.T) {
	_, err := NewSession(loadDevice(t, "bare"), Options{})
	if !errors.Is(err, pmc.ErrNoSdrSection) {
		t.Errorf("NewSession() error = %v, want ErrNoSdrSection", err)
	}
}

func TestSession_Step(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	s, _, _ := newTestSession(t, dev, nil, "", "", "", "", "")
	ctx := context.Background()

	want := []State{
		StatePromptThreshold, // after listing
		StatePromptThreshold, // LOWER_CRITICAL
		StatePromptMask,      // UPPER_CRITICAL
		StatePromptMask,
		StatePromptMask,
		StateConfirm,
		StateDone,
	}
	for i, w := range want {
		if err := s.Step(ctx); err != nil {
			t.Fatalf("Step %d error = %v", i, err)
		}
		if s.State() != w {
			t.Fatalf("after step %d State() = %v, want %v", i, s.State(), w)
		}
	}
	if err := s.Step(ctx); !errors.Is(err, ErrSessionDone) {
		t.Errorf("Step() after done error = %v, want ErrSessionDone", err)
	}
}

func TestSession_ContextCancelled(t *testing.T) {
	dev := loadDevice(t, "psu0_vin")
	s, _, _ := newTestSession(t, dev, nil, "5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if s.State() != StateShowCurrent {
		t.Errorf("State() = %v, want show-current", s.State())
	}
}
