package threshold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nerrad567/pmc-config/internal/conversion"
	"github.com/nerrad567/pmc-config/internal/pmc"
	"github.com/nerrad567/pmc-config/internal/report"
)

// State is a step of the session.
type State int

// Session states.
const (
	StateShowCurrent State = iota
	StatePromptThreshold
	StatePromptMask
	StateConfirm
	StateApply
	StateCancel
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateShowCurrent:
		return "show-current"
	case StatePromptThreshold:
		return "prompt-threshold"
	case StatePromptMask:
		return "prompt-mask"
	case StateConfirm:
		return "confirm"
	case StateApply:
		return "apply"
	case StateCancel:
		return "cancel"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Thresholds are prompted in this order, lower limits first.
var thresholdOrder = []string{
	conversion.LowerNonRecoverable,
	conversion.LowerCritical,
	conversion.LowerNonCritical,
	conversion.UpperNonCritical,
	conversion.UpperCritical,
	conversion.UpperNonRecoverable,
	conversion.SenMin,
	conversion.SenMax,
	conversion.NominalMin,
	conversion.NominalMax,
}

// Mask variables and their prompt labels.
var masks = []struct {
	variable string
	label    string
}{
	{"LWR_T_MASK", "Lower Threshold Reading Mask"},
	{"UPR_T_MASK", "Upper Threshold Reading Mask"},
	{"S_R_T_MASK", "Settable/Readable Threshold Mask"},
}

const (
	wideRule   = 60
	narrowRule = 40
)

// Change is a pending update recorded by the session.
type Change struct {
	Variable string
	Value    string
}

// Applied pairs a change with what SetValue did for it.
type Applied struct {
	Change
	Result pmc.SetResult
}

// Persister stores the document after all changes were applied.
type Persister interface {
	Persist(ctx context.Context, applied []Applied) error
}

// Converter is the subset of conversion.Engine used by the session.
type Converter interface {
	HasCoefficients(dev *pmc.Device) bool
	RawToReal(dev *pmc.Device, raw string) (float64, error)
	RealToRaw(dev *pmc.Device, value string) (int64, error)
}

// Logger defines the logging interface used by the Session.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options configures a Session.
type Options struct {
	Converter Converter
	Prompter  Prompter
	Persister Persister
	Out       io.Writer

	// RealColumn is where real values start in the current-value listing.
	// Zero means report.DefaultRealColumn.
	RealColumn int

	// Apply writes one confirmed change to the device. Nil means
	// (*pmc.Device).SetValue.
	Apply func(dev *pmc.Device, variable, value string) (pmc.SetResult, error)
}

// Outcome summarises a finished session.
type Outcome struct {
	// Changes lists the pending changes in the order they were entered.
	Changes []Change

	// Applied counts changes written to the device.
	Applied int

	// Saved is true when the document was persisted.
	Saved bool

	// Cancelled is true when the operator declined or input ended.
	Cancelled bool
}

// Session edits the thresholds and masks of one device.
type Session struct {
	dev    *pmc.Device
	opts   Options
	logger Logger

	state   State
	convert bool
	params  []string // thresholds present in SDR scope, in prompt order
	index   int
	changes []Change
	outcome Outcome
	failed  error
}

// NewSession creates a session for dev. Returns pmc.ErrNoSdrSection when the
// device has no SDR.
func NewSession(dev *pmc.Device, opts Options) (*Session, error) {
	if dev.Sdr == nil {
		return nil, fmt.Errorf("%w: device %q", pmc.ErrNoSdrSection, dev.Name)
	}
	if opts.RealColumn <= 0 {
		opts.RealColumn = report.DefaultRealColumn
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Apply == nil {
		opts.Apply = (*pmc.Device).SetValue
	}
	return &Session{
		dev:    dev,
		opts:   opts,
		logger: noopLogger{},
		state:  StateShowCurrent,
	}, nil
}

// SetLogger sets the logger for the session.
func (s *Session) SetLogger(logger Logger) {
	s.logger = logger
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Changes returns the pending changes recorded so far.
func (s *Session) Changes() []Change {
	return append([]Change(nil), s.changes...)
}

// Run steps the session until it is done.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	for s.state != StateDone {
		if err := s.Step(ctx); err != nil {
			return s.outcome, err
		}
	}
	return s.outcome, s.failed
}

// Step performs one state transition.
//
// A cancelled context or a prompt failure other than end of input is
// returned as an error and leaves the state unchanged.
func (s *Session) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		next State
		err  error
	)
	switch s.state {
	case StateShowCurrent:
		next = s.showCurrent()
	case StatePromptThreshold:
		next, err = s.promptThreshold(ctx)
	case StatePromptMask:
		next, err = s.promptMask(ctx)
	case StateConfirm:
		next, err = s.confirm(ctx)
	case StateApply:
		next = s.apply(ctx)
	case StateCancel:
		next = s.cancel()
	case StateDone:
		return ErrSessionDone
	}
	if err != nil {
		return err
	}

	s.logger.Debug("threshold session step", "device", s.dev.Name, "from", s.state, "to", next)
	s.state = next
	return nil
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.opts.Out, format, args...)
}

func rule(ch string, n int) string {
	return strings.Repeat(ch, n)
}

func (s *Session) showCurrent() State {
	s.printf("\n%s\n", rule("=", wideRule))
	s.printf("Interactive Threshold Configuration for: %s\n", s.dev.Name)
	s.printf("%s\n", rule("=", wideRule))
	s.printf("Press Enter to keep current value, or enter a new value.\n")
	s.printf("For threshold parameters, enter the REAL value (e.g., 12.5 for voltage)\n")
	s.printf("%s\n", rule("-", wideRule))

	s.convert = s.opts.Converter.HasCoefficients(s.dev)

	s.printf("\nCurrent threshold values:\n")
	s.printf("%s\n", rule("-", narrowRule))
	for _, p := range s.dev.Sdr.Configs {
		if p.Complete() && conversion.IsThresholdParam(p.Variable) {
			s.printf("%s\n", report.ThresholdLine(s.dev, p, s.opts.Converter, s.convert, s.opts.RealColumn))
		}
	}

	for _, param := range thresholdOrder {
		if _, ok := s.dev.SdrValue(param); ok {
			s.params = append(s.params, param)
		}
	}

	s.printf("\n%s\n", rule("-", wideRule))
	s.printf("Enter new values (or press Enter to skip):\n")
	s.printf("%s\n", rule("-", wideRule))

	s.index = 0
	return s.afterThreshold()
}

// afterThreshold picks the next threshold prompt, or moves on to masks.
func (s *Session) afterThreshold() State {
	if s.index < len(s.params) {
		return StatePromptThreshold
	}
	s.index = 0
	s.printf("\n%s\n", rule("-", wideRule))
	s.printf("Now configuring mask values (or press Enter to skip):\n")
	s.printf("%s\n", rule("-", wideRule))
	return StatePromptMask
}

// ask prompts once. End of input is reported as ok == false.
func (s *Session) ask(ctx context.Context, prompt string) (answer string, ok bool, err error) {
	line, err := s.opts.Prompter.Prompt(ctx, prompt)
	if errors.Is(err, io.EOF) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), true, nil
}

func (s *Session) promptThreshold(ctx context.Context) (State, error) {
	param := s.params[s.index]
	current, _ := s.dev.SdrValue(param)

	shown := current
	if s.convert {
		if realVal, err := s.opts.Converter.RawToReal(s.dev, current); err == nil {
			shown = conversion.FormatReal(realVal)
		}
	}

	input, ok, err := s.ask(ctx, fmt.Sprintf("%s [current: %s]: ", param, shown))
	if err != nil {
		return s.state, err
	}
	if !ok {
		return StateCancel, nil
	}
	s.index++

	switch {
	case input == "":
	case s.convert:
		raw, err := s.opts.Converter.RealToRaw(s.dev, input)
		if err != nil {
			s.logger.Warn("threshold conversion failed", "device", s.dev.Name, "variable", param, "error", err)
			s.printf("  -> Error: Failed to convert %s (%v). Skipping.\n", input, err)
			break
		}
		value := conversion.FormatRawHex(raw)
		s.printf("  -> Converting %s to %s\n", input, value)
		s.record(param, value)
	default:
		s.record(param, input)
	}
	return s.afterThreshold(), nil
}

func (s *Session) promptMask(ctx context.Context) (State, error) {
	mask := masks[s.index]
	current, found := s.dev.SdrValue(mask.variable)
	if !found {
		current = "Not set"
	}

	input, ok, err := s.ask(ctx, fmt.Sprintf("%s (%s) [current: %s]: ", mask.variable, mask.label, current))
	if err != nil {
		return s.state, err
	}
	if !ok {
		return StateCancel, nil
	}
	s.index++

	if input != "" {
		s.record(mask.variable, input)
	}
	if s.index < len(masks) {
		return StatePromptMask, nil
	}
	return StateConfirm, nil
}

func (s *Session) record(variable, value string) {
	s.changes = append(s.changes, Change{Variable: variable, Value: value})
}

func (s *Session) confirm(ctx context.Context) (State, error) {
	s.outcome.Changes = s.Changes()
	if len(s.changes) == 0 {
		s.printf("\nNo changes to apply.\n")
		return StateDone, nil
	}

	s.printf("\n%s\n", rule("=", wideRule))
	s.printf("Summary of changes to be applied:\n")
	s.printf("%s\n", rule("=", wideRule))
	for _, c := range s.changes {
		s.printf("  %s: %s\n", c.Variable, c.Value)
	}
	s.printf("\n")

	input, ok, err := s.ask(ctx, "Apply these changes? (y/N): ")
	if err != nil {
		return s.state, err
	}
	if ok && strings.ToLower(input) == "y" {
		return StateApply, nil
	}
	return StateCancel, nil
}

func (s *Session) apply(ctx context.Context) State {
	applied := make([]Applied, 0, len(s.changes))
	for _, c := range s.changes {
		res, err := s.opts.Apply(s.dev, c.Variable, c.Value)
		if err != nil {
			s.printf("Error: %v\n", err)
			s.logger.Warn("threshold change failed", "device", s.dev.Name, "variable", c.Variable, "error", err)
			continue
		}
		if err := report.Updated(s.opts.Out, res, c.Value); err != nil {
			s.logger.Warn("writing update line failed", "device", s.dev.Name, "variable", c.Variable, "error", err)
		}
		applied = append(applied, Applied{Change: c, Result: res})
	}
	s.outcome.Applied = len(applied)

	if len(applied) != len(s.changes) {
		s.printf("\nWarning: Only %d/%d changes were applied.\n", len(applied), len(s.changes))
		s.printf("Check errors above.\n")
		return StateDone
	}

	if s.opts.Persister != nil {
		if err := s.opts.Persister.Persist(ctx, applied); err != nil {
			s.failed = err
			return StateDone
		}
		s.outcome.Saved = true
	}
	s.printf("\nSuccessfully applied %d changes!\n", len(applied))
	s.logger.Info("thresholds applied", "device", s.dev.Name, "changes", len(applied))
	return StateDone
}

func (s *Session) cancel() State {
	s.outcome.Changes = s.Changes()
	s.outcome.Cancelled = true
	s.printf("\nChanges cancelled.\n")
	return StateDone
}
