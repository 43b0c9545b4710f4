package conversion

import (
	"errors"
	"testing"

	"github.com/nerrad567/pmc-config/internal/pmc"
)

func TestCoefficients(t *testing.T) {
	tests := []struct {
		name      string
		device    []kv
		sdr       []kv
		wantM     string
		wantE     string
		wantScope pmc.Scope
		wantErr   error
	}{
		{
			name:      "device scope",
			device:    []kv{{VarMVal, "2"}, {VarRExp, "-1"}},
			wantM:     "2",
			wantE:     "-1",
			wantScope: pmc.ScopeDevice,
		},
		{
			name:      "sdr scope",
			sdr:       []kv{{VarMVal, "5"}, {VarRExp, "-2"}},
			wantM:     "5",
			wantE:     "-2",
			wantScope: pmc.ScopeSDR,
		},
		{
			name:      "device pair wins over sdr pair",
			device:    []kv{{VarMVal, "2"}, {VarRExp, "-1"}},
			sdr:       []kv{{VarMVal, "5"}, {VarRExp, "-2"}},
			wantM:     "2",
			wantE:     "-1",
			wantScope: pmc.ScopeDevice,
		},
		{
			name:      "half pair in device scope falls back to sdr pair",
			device:    []kv{{VarMVal, "2"}},
			sdr:       []kv{{VarMVal, "5"}, {VarRExp, "-2"}},
			wantM:     "5",
			wantE:     "-2",
			wantScope: pmc.ScopeSDR,
		},
		{
			name:    "pair split across scopes",
			device:  []kv{{VarMVal, "2"}},
			sdr:     []kv{{VarRExp, "-2"}},
			wantErr: ErrMissingCoefficients,
		},
		{
			name:    "no coefficients",
			device:  []kv{{"BUS", "3"}},
			wantErr: ErrMissingCoefficients,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Coefficients(newDevice(tt.device, tt.sdr))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Coefficients() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Coefficients() error = %v", err)
			}
			if s.MVal != tt.wantM || s.RExp != tt.wantE || s.Scope != tt.wantScope {
				t.Errorf("Coefficients() = %+v, want M_VAL=%s R_EXP=%s scope=%v",
					s, tt.wantM, tt.wantE, tt.wantScope)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "2", want: 2},
		{in: "-3", want: -3},
		{in: "+4", want: 4},
		{in: " 7\n", want: 7},
		{in: "0x10", want: 16},
		{in: "0XfF", want: 255},
		{in: "0x7fffffffffffffff", want: 1<<63 - 1},
		{in: "0x8000000000000000", wantErr: true},
		{in: "0x-1", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrConversion) {
					t.Errorf("ParseInt(%q) error = %v, want ErrConversion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInt(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseRaw(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "0x64", want: 100},
		{in: "100", want: 100},
		{in: "12.5", want: 12.5},
		{in: "-4", want: -4},
		{in: "0", want: 0},
		{in: "1e3", want: 1000},
		{in: "0xg", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRaw(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrConversion) {
					t.Errorf("ParseRaw(%q) error = %v, want ErrConversion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRaw(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRaw(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestScalingParse_Errors(t *testing.T) {
	_, _, err := Scaling{MVal: "two", RExp: "-1"}.Parse()
	if !errors.Is(err, ErrConversion) {
		t.Errorf("Parse(bad M_VAL) error = %v, want ErrConversion", err)
	}
	_, _, err = Scaling{MVal: "2", RExp: "0.5"}.Parse()
	if !errors.Is(err, ErrConversion) {
		t.Errorf("Parse(bad R_EXP) error = %v, want ErrConversion", err)
	}
}
