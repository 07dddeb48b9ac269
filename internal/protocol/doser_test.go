package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestDoseTenthsFromML(t *testing.T) {
	tests := []struct {
		name    string
		ml      float64
		want    int
		wantErr bool
	}{
		{name: "minimum dose", ml: 0.2, want: 2},
		{name: "typical dose", ml: 10.5, want: 105},
		{name: "bucket boundary", ml: 25.6, want: 256},
		{name: "maximum dose", ml: 999.9, want: 9999},
		{name: "rounds half away from zero", ml: 1.25, want: 13},
		{name: "rounds down below half", ml: 1.24, want: 12},
		{name: "below minimum", ml: 0.1, wantErr: true},
		{name: "above maximum", ml: 1000.0, wantErr: true},
		{name: "zero", ml: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DoseTenthsFromML(tt.ml)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DoseTenthsFromML(%v) error = %v, wantErr %v", tt.ml, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrOutOfRange) {
					t.Errorf("error %v does not match ErrOutOfRange", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("DoseTenthsFromML(%v) = %d, want %d", tt.ml, got, tt.want)
			}
		})
	}
}

func TestSplitDoseTenths(t *testing.T) {
	// The documented fixtures: hi counts 25.6 mL buckets, lo is the 0.1 mL
	// remainder. 999.9 mL leaves 999.9 - 39*25.6 = 1.5 mL, so (39, 15).
	tests := []struct {
		name    string
		tenths  int
		wantHi  byte
		wantLo  byte
		wantErr bool
	}{
		{name: "10.5 mL", tenths: 105, wantHi: 0, wantLo: 105},
		{name: "25.6 mL exact bucket", tenths: 256, wantHi: 1, wantLo: 0},
		{name: "0.2 mL minimum", tenths: 2, wantHi: 0, wantLo: 2},
		{name: "999.9 mL maximum", tenths: 9999, wantHi: 39, wantLo: 15},
		{name: "51.2 mL two buckets", tenths: 512, wantHi: 2, wantLo: 0},
		{name: "29.0 mL", tenths: 290, wantHi: 1, wantLo: 34},
		{name: "below minimum", tenths: 1, wantErr: true},
		{name: "above maximum", tenths: 10000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hi, lo, err := SplitDoseTenths(tt.tenths)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitDoseTenths(%d) error = %v, wantErr %v", tt.tenths, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if hi != tt.wantHi || lo != tt.wantLo {
				t.Errorf("SplitDoseTenths(%d) = (%d, %d), want (%d, %d)",
					tt.tenths, hi, lo, tt.wantHi, tt.wantLo)
			}
		})
	}
}

func TestSplitDoseTenthsBounds(t *testing.T) {
	// hi must stay within [0, 39] and the remainder within a single bucket
	// for the entire legal range.
	for tenths := MinDoseTenths; tenths <= MaxDoseTenths; tenths++ {
		hi, lo, err := SplitDoseTenths(tenths)
		if err != nil {
			t.Fatalf("SplitDoseTenths(%d) error = %v", tenths, err)
		}
		if hi > 39 {
			t.Fatalf("SplitDoseTenths(%d) hi = %d, want <= 39", tenths, hi)
		}
		if int(hi)*256+int(lo) != tenths {
			t.Fatalf("SplitDoseTenths(%d) = (%d, %d), does not recompose", tenths, hi, lo)
		}
	}
}

func TestNewManualDose(t *testing.T) {
	tests := []struct {
		name       string
		channel    int
		tenths     int
		wantParams []byte
		wantErr    bool
	}{
		{name: "channel 0 small dose", channel: 0, tenths: 113, wantParams: []byte{0, 0, 0, 0, 113}},
		{name: "channel 3 bucketed dose", channel: 3, tenths: 290, wantParams: []byte{3, 0, 0, 1, 34}},
		{name: "channel out of range", channel: 4, tenths: 100, wantErr: true},
		{name: "amount out of range", channel: 0, tenths: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewManualDose(tt.channel, tt.tenths)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewManualDose() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd.ID != CmdTimed || cmd.Mode != ModeManualDose {
				t.Errorf("command = %d/%d, want %d/%d", cmd.ID, cmd.Mode, CmdTimed, ModeManualDose)
			}
			if cmd.Policy != PolicyAvoid5A {
				t.Errorf("policy = %d, want PolicyAvoid5A", cmd.Policy)
			}
			if !bytes.Equal(cmd.Params, tt.wantParams) {
				t.Errorf("params = %v, want %v", cmd.Params, tt.wantParams)
			}
		})
	}
}

func TestNewDoseScheduleTime(t *testing.T) {
	cmd, err := NewDoseScheduleTime(2, TimeOfDay{Hour: 8, Minute: 45})
	if err != nil {
		t.Fatalf("NewDoseScheduleTime() error = %v", err)
	}
	want := []byte{2, 1, 8, 45, 0, 0}
	if cmd.ID != CmdTimed || cmd.Mode != ModeDoseSchedule {
		t.Errorf("command = %d/%d, want %d/%d", cmd.ID, cmd.Mode, CmdTimed, ModeDoseSchedule)
	}
	if !bytes.Equal(cmd.Params, want) {
		t.Errorf("params = %v, want %v", cmd.Params, want)
	}

	if _, err := NewDoseScheduleTime(0, TimeOfDay{Hour: 24}); err == nil {
		t.Error("NewDoseScheduleTime() accepted hour 24")
	}
}

func TestNewDoseScheduleAmount(t *testing.T) {
	cmd, err := NewDoseScheduleAmount(1, NewWeekdaySet(Monday, Thursday), 800)
	if err != nil {
		t.Fatalf("NewDoseScheduleAmount() error = %v", err)
	}
	// 800 tenths = 80.0 mL = 3 buckets + 32 tenths.
	want := []byte{1, 0x09, 1, 0, 3, 32}
	if !bytes.Equal(cmd.Params, want) {
		t.Errorf("params = %v, want %v", cmd.Params, want)
	}
	if cmd.Mode != ModeManualDose {
		t.Errorf("mode = %d, want %d (amount part shares the dose opcode)", cmd.Mode, ModeManualDose)
	}
}

func TestNewDoseCatchUp(t *testing.T) {
	tests := []struct {
		name       string
		channel    int
		catchUp    bool
		wantParams []byte
		wantErr    bool
	}{
		{name: "enabled", channel: 0, catchUp: true, wantParams: []byte{0, 0, 1}},
		{name: "disabled", channel: 3, catchUp: false, wantParams: []byte{3, 0, 0}},
		{name: "bad channel", channel: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewDoseCatchUp(tt.channel, tt.catchUp)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDoseCatchUp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cmd.Mode != ModeDoseAuto {
				t.Errorf("mode = %d, want %d", cmd.Mode, ModeDoseAuto)
			}
			if !bytes.Equal(cmd.Params, tt.wantParams) {
				t.Errorf("params = %v, want %v", cmd.Params, tt.wantParams)
			}
		})
	}
}

func TestNewTotalsQuery(t *testing.T) {
	for _, mode := range []byte{ModeTotalsCurrent, ModeTotalsLegacy} {
		cmd, err := NewTotalsQuery(mode)
		if err != nil {
			t.Fatalf("NewTotalsQuery(%d) error = %v", mode, err)
		}
		if cmd.ID != CmdQuery || cmd.Mode != mode {
			t.Errorf("command = %d/%d, want %d/%d", cmd.ID, cmd.Mode, CmdQuery, mode)
		}
		if len(cmd.Params) != 0 {
			t.Errorf("params = %v, want none", cmd.Params)
		}
	}

	if _, err := NewTotalsQuery(33); err == nil {
		t.Error("NewTotalsQuery(33) accepted an unknown mode")
	}
}

func TestNewOrderConfirmation(t *testing.T) {
	cmd, err := NewOrderConfirmation(CmdLED, 1)
	if err != nil {
		t.Fatalf("NewOrderConfirmation() error = %v", err)
	}
	if cmd.ID != CmdLED || cmd.Mode != ModeConfirm || !bytes.Equal(cmd.Params, []byte{1}) {
		t.Errorf("command = %d/%d %v, want 90/4 [1]", cmd.ID, cmd.Mode, cmd.Params)
	}

	if _, err := NewOrderConfirmation(91, 1); err == nil {
		t.Error("NewOrderConfirmation() accepted family 91")
	}
}
