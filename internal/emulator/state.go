package emulator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/chihiros-control/chihirosctl/internal/device"
	"github.com/chihiros-control/chihirosctl/internal/logging"
	"github.com/chihiros-control/chihirosctl/internal/protocol"
)

// deviceState is the in-memory model behind the emulated bridge. It applies
// the write-only commands to local state and synthesizes the notification
// frames a real device would push.
type deviceState struct {
	mu      sync.Mutex
	profile device.Profile
	seq     *protocol.Sequencer

	manual     bool
	brightness map[int]int

	// dispensed tenths of a millilitre per doser channel
	totalsTenths [protocol.TotalsChannels]int
}

func newDeviceState(deviceName string) *deviceState {
	return &deviceState{
		profile:    device.ProfileFor(deviceName),
		seq:        protocol.NewSequencer(0),
		manual:     true,
		brightness: make(map[int]int),
	}
}

// Handle applies one inbound command frame and returns any notification
// frames to push back. Malformed frames return the decode error; commands
// the model does not simulate are accepted silently, the way real firmware
// swallows what it does not understand.
func (d *deviceState) Handle(data []byte) ([][]byte, error) {
	resp, err := protocol.Decode(data)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case resp.CommandID == protocol.CmdLED && resp.Mode == protocol.ModeManual:
		d.applyBrightness(resp.Params)

	case resp.CommandID == protocol.CmdLED && resp.Mode == protocol.ModeSwitch:
		if len(resp.Params) == 3 {
			// 18 enables the programmed schedule, 11 returns to manual.
			d.manual = resp.Params[0] != 18
		}

	case resp.CommandID == protocol.CmdTimed && resp.Mode == protocol.ModeManualDose:
		if d.profile.Doser {
			d.applyDose(resp.Params)
		}

	case resp.CommandID == protocol.CmdQuery &&
		(resp.Mode == protocol.ModeTotalsCurrent || resp.Mode == protocol.ModeTotalsLegacy):
		// Only a doser answers totals queries; lights stay silent.
		if d.profile.Doser {
			return d.totalsReply()
		}
	}

	return nil, nil
}

// applyBrightness handles a 90/7 frame: params [channel, brightness].
func (d *deviceState) applyBrightness(params []byte) {
	if len(params) != 2 {
		return
	}
	d.manual = true
	d.brightness[int(params[0])] = int(params[1])
	logging.Debug("Emulated brightness change",
		zap.Int("channel", int(params[0])),
		zap.Int("brightness", int(params[1])),
	)
}

// applyDose handles a 165/27 frame. A one-shot dose carries five
// parameters [channel, 0, 0, hi, lo]; the six-parameter schedule amount
// variant programs future doses and does not move the totals.
func (d *deviceState) applyDose(params []byte) {
	if len(params) != 5 {
		return
	}
	channel := int(params[0])
	if channel < 0 || channel >= protocol.TotalsChannels {
		return
	}
	tenths := int(params[3])*256 + int(params[4])
	d.totalsTenths[channel] += tenths
	logging.Debug("Emulated dose",
		zap.Int("channel", channel),
		zap.Int("tenths", tenths),
	)
}

// totalsReply builds the 91/34 daily totals notification from the
// accumulated doses: four hi/lo pairs, hi carrying 25.6 mL steps and lo
// the 0.1 mL remainder.
func (d *deviceState) totalsReply() ([][]byte, error) {
	params := make([]byte, 0, 2*protocol.TotalsChannels)
	for _, tenths := range d.totalsTenths {
		params = append(params, byte(tenths/256), byte(tenths%256))
	}

	frame, err := protocol.BuildFrame(
		protocol.NewRawCommand(protocol.CmdQuery, protocol.ModeTotalsCurrent, params),
		d.seq,
	)
	if err != nil {
		return nil, err
	}
	return [][]byte{frame}, nil
}

// Brightness reports the emulated brightness of one channel.
func (d *deviceState) Brightness(channel int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.brightness[channel]
}
