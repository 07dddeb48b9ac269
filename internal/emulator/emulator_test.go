package emulator

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chihiros-control/chihirosctl/internal/device"
	"github.com/chihiros-control/chihirosctl/internal/protocol"
	"github.com/chihiros-control/chihirosctl/internal/transport"
)

func buildFrame(t *testing.T, cmd protocol.Command) []byte {
	t.Helper()
	frame, err := protocol.BuildFrame(cmd, protocol.NewSequencer(0))
	if err != nil {
		t.Fatalf("BuildFrame() error = %v", err)
	}
	return frame
}

func TestDeviceStateBrightness(t *testing.T) {
	state := newDeviceState("DYNWRGB1234")

	cmd, err := protocol.NewManualBrightness(1, 80)
	if err != nil {
		t.Fatalf("NewManualBrightness() error = %v", err)
	}

	replies, err := state.Handle(buildFrame(t, cmd))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(replies) != 0 {
		t.Errorf("Handle() replies = %d, want 0", len(replies))
	}
	if got := state.Brightness(1); got != 80 {
		t.Errorf("Brightness(1) = %d, want 80", got)
	}
}

func TestDeviceStateRejectsCorruptFrame(t *testing.T) {
	state := newDeviceState("DYNWRGB1234")

	cmd, err := protocol.NewManualBrightness(0, 100)
	if err != nil {
		t.Fatalf("NewManualBrightness() error = %v", err)
	}
	frame := buildFrame(t, cmd)
	frame[len(frame)-1] ^= 0xFF

	if _, err := state.Handle(frame); err == nil {
		t.Error("Handle() accepted a frame with a corrupted checksum")
	}
}

func TestDeviceStateTotals(t *testing.T) {
	state := newDeviceState("DYDOSED5EF")

	// 10.5 mL on head 1, 25.6 mL on head 3.
	dose1, err := protocol.NewManualDose(0, 105)
	if err != nil {
		t.Fatalf("NewManualDose() error = %v", err)
	}
	dose2, err := protocol.NewManualDose(2, 256)
	if err != nil {
		t.Fatalf("NewManualDose() error = %v", err)
	}
	for _, cmd := range []protocol.Command{dose1, dose2} {
		if _, err := state.Handle(buildFrame(t, cmd)); err != nil {
			t.Fatalf("Handle(dose) error = %v", err)
		}
	}

	query, err := protocol.NewTotalsQuery(protocol.ModeTotalsCurrent)
	if err != nil {
		t.Fatalf("NewTotalsQuery() error = %v", err)
	}
	replies, err := state.Handle(buildFrame(t, query))
	if err != nil {
		t.Fatalf("Handle(query) error = %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("Handle(query) replies = %d, want 1", len(replies))
	}

	resp, err := protocol.Decode(replies[0])
	if err != nil {
		t.Fatalf("Decode(reply) error = %v", err)
	}
	totals, ok := resp.DailyTotals()
	if !ok {
		t.Fatalf("reply is not a totals frame: %s", resp)
	}
	want := protocol.DailyTotals{10.5, 0, 25.6, 0}
	if totals != want {
		t.Errorf("DailyTotals() = %v, want %v", totals, want)
	}
}

func TestDeviceStateScheduleAmountDoesNotMoveTotals(t *testing.T) {
	state := newDeviceState("DYDOSED5EF")

	cmd, err := protocol.NewDoseScheduleAmount(0, protocol.EveryDay, 50)
	if err != nil {
		t.Fatalf("NewDoseScheduleAmount() error = %v", err)
	}
	if _, err := state.Handle(buildFrame(t, cmd)); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if state.totalsTenths[0] != 0 {
		t.Errorf("totalsTenths[0] = %d, want 0", state.totalsTenths[0])
	}
}

// TestEmulatorEndToEnd drives the emulator through the real transport and
// session layers: dial, dose, and read the totals back.
func TestEmulatorEndToEnd(t *testing.T) {
	srv := New(&Config{DeviceName: "DYDOSED5EF"})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	addr := strings.TrimPrefix(ts.URL, "http://")
	tr, err := transport.DialBridge(ctx, addr)
	if err != nil {
		t.Fatalf("DialBridge() error = %v", err)
	}

	session := device.NewSession(tr, device.ProfileFor("DYDOSED5EF"))
	defer func() { _ = session.Close() }()

	if err := session.Dose(ctx, 1, 12.5); err != nil {
		t.Fatalf("Dose() error = %v", err)
	}

	totals, err := session.QueryTotals(ctx)
	if err != nil {
		t.Fatalf("QueryTotals() error = %v", err)
	}
	want := protocol.DailyTotals{0, 12.5, 0, 0}
	if totals != want {
		t.Errorf("QueryTotals() = %v, want %v", totals, want)
	}
}
