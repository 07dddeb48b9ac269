package protocol

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestDecodeValidFrame(t *testing.T) {
	frame := []byte{90, 1, 7, 0x12, 0x34, 7, 0, 100}
	frame = append(frame, Checksum(frame))

	resp, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.CommandID != 90 {
		t.Errorf("CommandID = %d, want 90", resp.CommandID)
	}
	if resp.Mode != 7 {
		t.Errorf("Mode = %d, want 7", resp.Mode)
	}
	if resp.MessageID != 0x1234 {
		t.Errorf("MessageID = 0x%04x, want 0x1234", resp.MessageID)
	}
	if !bytes.Equal(resp.Params, []byte{0, 100}) {
		t.Errorf("Params = %v, want [0 100]", resp.Params)
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := []byte{90, 1, 7, 0, 0, 7, 0, 100}
	valid = append(valid, Checksum(valid))

	corrupted := append([]byte(nil), valid...)
	corrupted[len(corrupted)-1] ^= 0xFF

	badLength := append([]byte(nil), valid...)
	badLength[2] = 9 // claims more parameters than present
	badLength[len(badLength)-1] = Checksum(badLength[:len(badLength)-1])

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty input", data: nil, want: ErrMalformedFrame},
		{name: "too short", data: []byte{90, 1, 5, 0, 0}, want: ErrMalformedFrame},
		{name: "corrupted checksum", data: corrupted, want: ErrChecksumMismatch},
		{name: "length field mismatch", data: badLength, want: ErrMalformedFrame},
		{name: "six bytes cannot carry a frame", data: []byte{90, 1, 5, 0, 0, 90 ^ 1 ^ 5}, want: ErrMalformedFrame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			if err == nil {
				t.Fatal("Decode() succeeded, want error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("Decode() error type = %T, want *DecodeError", err)
			}
		})
	}
}

func TestDecodeBuildRoundTrip(t *testing.T) {
	// Decoding a built frame must recover commandId, mode, and parameters
	// bit-for-bit for every command the catalog produces.
	mustCmd := func(cmd Command, err error) Command {
		t.Helper()
		if err != nil {
			t.Fatalf("constructor error = %v", err)
		}
		return cmd
	}

	brightness := mustCmd(NewManualBrightness(0, 100))
	setTime := mustCmd(NewSetTime(time.Date(2024, time.March, 4, 10, 20, 30, 0, time.UTC)))
	timed := mustCmd(NewAddTimedSetting(TimedSetting{
		Sunrise:       TimeOfDay{Hour: 6, Minute: 30},
		Sunset:        TimeOfDay{Hour: 19, Minute: 0},
		RampUpMinutes: 45,
		Weekdays:      NewWeekdaySet(Saturday, Sunday),
		Brightness:    [3]int{90, 70, 50},
	}))
	deleted := mustCmd(NewDeleteTimedSetting(TimeOfDay{Hour: 6}, TimeOfDay{Hour: 19}, 0, EveryDay))
	dose := mustCmd(NewManualDose(1, 256))
	scheduleTime := mustCmd(NewDoseScheduleTime(2, TimeOfDay{Hour: 8, Minute: 0}))
	scheduleAmount := mustCmd(NewDoseScheduleAmount(2, EveryDay, 105))
	catchUp := mustCmd(NewDoseCatchUp(0, true))
	totals := mustCmd(NewTotalsQuery(ModeTotalsCurrent))
	confirm := mustCmd(NewOrderConfirmation(CmdTimed, 4))

	commands := map[string]Command{
		"manual brightness":    brightness,
		"enable auto":          NewEnableAutoMode(),
		"manual mode":          NewManualMode(),
		"reset settings":       NewResetAutoSettings(),
		"set time":             setTime,
		"timed setting":        timed,
		"delete timed setting": deleted,
		"manual dose":          dose,
		"dose schedule time":   scheduleTime,
		"dose schedule amount": scheduleAmount,
		"catch-up toggle":      catchUp,
		"totals query":         totals,
		"order confirmation":   confirm,
		"raw frame":            NewRawCommand(123, 45, []byte{1, 2, 3}),
	}

	seq := NewSequencer(0)
	for name, cmd := range commands {
		t.Run(name, func(t *testing.T) {
			frame, err := BuildFrame(cmd, seq)
			if err != nil {
				t.Fatalf("BuildFrame() error = %v", err)
			}
			resp, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if resp.CommandID != cmd.ID {
				t.Errorf("CommandID = %d, want %d", resp.CommandID, cmd.ID)
			}
			if resp.Mode != cmd.Mode {
				t.Errorf("Mode = %d, want %d", resp.Mode, cmd.Mode)
			}
			if !bytes.Equal(resp.Params, frame.Params()) {
				t.Errorf("Params = %v, want %v", resp.Params, frame.Params())
			}
			if resp.MessageID != frame.MessageID() {
				t.Errorf("MessageID = %d, want %d", resp.MessageID, frame.MessageID())
			}
		})
	}
}

func TestDecodeUnknownCommandIsNotAnError(t *testing.T) {
	// Forward compatibility: undocumented replies decode to a generic
	// structured frame instead of failing.
	frame := []byte{200, 1, 8, 0, 1, 99, 0xDE, 0xAD, 0xBE}
	frame = append(frame, Checksum(frame))

	resp, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if resp.CommandID != 200 || resp.Mode != 99 {
		t.Errorf("decoded %d/%d, want 200/99", resp.CommandID, resp.Mode)
	}
	if !bytes.Equal(resp.Params, []byte{0xDE, 0xAD, 0xBE}) {
		t.Errorf("Params = %v, want [0xDE 0xAD 0xBE]", resp.Params)
	}
}

func TestDailyTotals(t *testing.T) {
	buildReply := func(mode byte, params []byte) []byte {
		frame := []byte{CmdQuery, 1, byte(len(params) + 5), 0, 0, mode}
		frame = append(frame, params...)
		return append(frame, Checksum(frame))
	}

	tests := []struct {
		name   string
		frame  []byte
		want   DailyTotals
		wantOK bool
	}{
		{
			name:   "four channels",
			frame:  buildReply(ModeTotalsCurrent, []byte{0, 113, 1, 0, 2, 0, 0, 2}),
			want:   DailyTotals{11.3, 25.6, 51.2, 0.2},
			wantOK: true,
		},
		{
			name:   "legacy mode",
			frame:  buildReply(ModeTotalsLegacy, []byte{0, 0, 0, 0, 0, 0, 0, 0}),
			want:   DailyTotals{},
			wantOK: true,
		},
		{
			name:   "wrong parameter count",
			frame:  buildReply(ModeTotalsCurrent, []byte{0, 113}),
			wantOK: false,
		},
		{
			name:   "wrong mode",
			frame:  buildReply(10, []byte{0, 113, 1, 0, 2, 0, 0, 2}),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode(tt.frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			got, ok := resp.DailyTotals()
			if ok != tt.wantOK {
				t.Fatalf("DailyTotals() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("DailyTotals() = %v, want %v", got, tt.want)
			}
		})
	}
}
