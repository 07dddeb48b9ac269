package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chihiros-control/chihirosctl/internal/logging"
	"github.com/chihiros-control/chihirosctl/internal/protocol"
	"github.com/chihiros-control/chihirosctl/internal/transport"
)

// ErrNotDoser is returned when a dosing operation is invoked on a session
// whose profile is not a dosing pump.
var ErrNotDoser = errors.New("device is not a dosing pump")

// ErrNoRGB is returned when an RGB operation is invoked on a model without
// red, green and blue channels.
var ErrNoRGB = errors.New("device has no RGB channels")

// Session is one live connection to a device. It owns the message-id
// sequencer for the connection and serializes all command traffic; callers
// may invoke methods from multiple goroutines.
type Session struct {
	profile Profile
	tr      transport.Transport

	mu  sync.Mutex
	seq *protocol.Sequencer
}

// NewSession wraps an open transport. The session takes ownership of the
// transport and closes it in Close.
func NewSession(tr transport.Transport, profile Profile) *Session {
	return &Session{
		profile: profile,
		tr:      tr,
		seq:     protocol.NewSequencer(0),
	}
}

// Profile returns the model profile this session was opened with.
func (s *Session) Profile() Profile {
	return s.profile
}

// Notifications exposes the transport's raw notification stream. The
// channel closes when the transport does.
func (s *Session) Notifications() <-chan []byte {
	return s.tr.Notifications()
}

// Close releases the underlying transport.
func (s *Session) Close() error {
	return s.tr.Close()
}

// send encodes and writes the given commands in order under the session
// lock. A failed write aborts the remainder; the device treats each frame
// independently, so a partial sequence is safe to retry from the start.
func (s *Session) send(ctx context.Context, cmds ...protocol.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cmd := range cmds {
		frame, err := protocol.BuildFrame(cmd, s.seq)
		if err != nil {
			return err
		}
		logging.LogFrame("write", frame.CommandID(), frame.Mode(), frame)
		if err := s.tr.Write(ctx, frame); err != nil {
			return fmt.Errorf("failed to send command %d/%d: %w", cmd.ID, cmd.Mode, err)
		}
	}
	return nil
}

// SetBrightness sets channel 0 (white on single-channel models, red on RGB
// models) to the given percentage.
func (s *Session) SetBrightness(ctx context.Context, brightness int) error {
	cmd, err := protocol.NewManualBrightness(0, brightness)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// SetColorBrightness sets one named color channel to the given percentage.
// Valid names come from the session's profile.
func (s *Session) SetColorBrightness(ctx context.Context, color string, brightness int) error {
	id, ok := s.profile.HasChannel(color)
	if !ok {
		return fmt.Errorf("model %s has no %q channel", s.profile.Name, color)
	}
	cmd, err := protocol.NewManualBrightness(id, brightness)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// SetRGBBrightness sets the red, green and blue channels in one call.
func (s *Session) SetRGBBrightness(ctx context.Context, rgb [3]int) error {
	ids, ok := s.profile.RGB()
	if !ok {
		return fmt.Errorf("%w: model %s", ErrNoRGB, s.profile.Name)
	}
	cmds := make([]protocol.Command, 0, 3)
	for i, id := range ids {
		cmd, err := protocol.NewManualBrightness(id, rgb[i])
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	return s.send(ctx, cmds...)
}

// TurnOn drives every channel of the model to full brightness.
func (s *Session) TurnOn(ctx context.Context) error {
	return s.setAll(ctx, 100)
}

// TurnOff drives every channel of the model to zero. The devices have no
// dedicated power opcode; zero brightness is off.
func (s *Session) TurnOff(ctx context.Context) error {
	return s.setAll(ctx, 0)
}

func (s *Session) setAll(ctx context.Context, brightness int) error {
	cmds := make([]protocol.Command, 0, len(s.profile.Channels))
	for _, ch := range s.profile.Channels {
		cmd, err := protocol.NewManualBrightness(ch.ID, brightness)
		if err != nil {
			return err
		}
		cmds = append(cmds, cmd)
	}
	return s.send(ctx, cmds...)
}

// AddSetting programs one sunrise/sunset entry of the auto-mode schedule.
func (s *Session) AddSetting(ctx context.Context, ts protocol.TimedSetting) error {
	cmd, err := protocol.NewAddTimedSetting(ts)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// RemoveSetting deactivates the schedule entry matching the given time
// window. The ramp and weekdays must match the entry being removed.
func (s *Session) RemoveSetting(ctx context.Context, sunrise, sunset protocol.TimeOfDay, rampUpMinutes int, weekdays protocol.WeekdaySet) error {
	cmd, err := protocol.NewDeleteTimedSetting(sunrise, sunset, rampUpMinutes, weekdays)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// ResetSettings clears the device's entire auto-mode schedule.
func (s *Session) ResetSettings(ctx context.Context) error {
	return s.send(ctx, protocol.NewResetAutoSettings())
}

// EnableAutoMode switches the light back to its programmed schedule and
// syncs the device clock so entries fire at the right wall time.
func (s *Session) EnableAutoMode(ctx context.Context) error {
	setTime, err := protocol.NewSetTime(time.Now())
	if err != nil {
		return err
	}
	return s.send(ctx, protocol.NewEnableAutoMode(), setTime)
}

// SetManualMode switches the light to manual control, suspending the
// schedule.
func (s *Session) SetManualMode(ctx context.Context) error {
	return s.send(ctx, protocol.NewManualMode())
}

// SetTime syncs the device clock.
func (s *Session) SetTime(ctx context.Context, t time.Time) error {
	cmd, err := protocol.NewSetTime(t)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// Raw sends an arbitrary command. Unknown id/mode pairs are logged but
// still sent; the firmware ignores what it does not understand.
func (s *Session) Raw(ctx context.Context, id, mode byte, params []byte) error {
	if err := protocol.ValidateRaw(id, mode); err != nil {
		logging.Warn("Sending uncataloged command",
			zap.Uint8("command_id", id),
			zap.Uint8("mode", mode),
			zap.Error(err),
		)
	}
	return s.send(ctx, protocol.NewRawCommand(id, mode, params))
}

// Dose administers a one-shot dose of ml millilitres on the given channel.
func (s *Session) Dose(ctx context.Context, channel int, ml float64) error {
	if !s.profile.Doser {
		return ErrNotDoser
	}
	tenths, err := protocol.DoseTenthsFromML(ml)
	if err != nil {
		return err
	}
	cmd, err := protocol.NewManualDose(channel, tenths)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// AddDoseSchedule programs one daily dose entry. The firmware expects a
// handshake before schedule writes: an order confirmation, two clock syncs,
// two more confirmations, and the channel's auto-mode activation; the entry
// itself then goes out as a time part followed by an amount part.
func (s *Session) AddDoseSchedule(ctx context.Context, setting protocol.DoseSetting) error {
	if !s.profile.Doser {
		return ErrNotDoser
	}

	confirmStart, err := protocol.NewOrderConfirmation(protocol.CmdLED, 1)
	if err != nil {
		return err
	}
	confirm4, err := protocol.NewOrderConfirmation(protocol.CmdTimed, 4)
	if err != nil {
		return err
	}
	confirm5, err := protocol.NewOrderConfirmation(protocol.CmdTimed, 5)
	if err != nil {
		return err
	}
	setTime, err := protocol.NewSetTime(time.Now())
	if err != nil {
		return err
	}
	autoMode, err := protocol.NewDoseCatchUp(setting.Channel, setting.CatchUp)
	if err != nil {
		return err
	}
	timePart, err := protocol.NewDoseScheduleTime(setting.Channel, setting.Time)
	if err != nil {
		return err
	}
	amountPart, err := protocol.NewDoseScheduleAmount(setting.Channel, setting.Weekdays, setting.AmountTenths)
	if err != nil {
		return err
	}

	return s.send(ctx,
		confirmStart,
		setTime, setTime,
		confirm4, confirm5,
		autoMode,
		timePart,
		amountPart,
	)
}

// EnableDoserAutoMode activates a channel's programmed schedule and syncs
// the device clock.
func (s *Session) EnableDoserAutoMode(ctx context.Context, channel int, catchUp bool) error {
	if !s.profile.Doser {
		return ErrNotDoser
	}
	autoMode, err := protocol.NewDoseCatchUp(channel, catchUp)
	if err != nil {
		return err
	}
	setTime, err := protocol.NewSetTime(time.Now())
	if err != nil {
		return err
	}
	return s.send(ctx, autoMode, setTime)
}

// SetCatchUp toggles late administration of missed doses on one channel.
func (s *Session) SetCatchUp(ctx context.Context, channel int, enabled bool) error {
	if !s.profile.Doser {
		return ErrNotDoser
	}
	cmd, err := protocol.NewDoseCatchUp(channel, enabled)
	if err != nil {
		return err
	}
	return s.send(ctx, cmd)
}

// QueryTotals asks the pump for its per-channel daily dispense totals and
// waits for the reply. Firmware revisions answer different query modes, so
// both are probed; whichever reply arrives first wins. The context bounds
// the wait.
func (s *Session) QueryTotals(ctx context.Context) (protocol.DailyTotals, error) {
	if !s.profile.Doser {
		return protocol.DailyTotals{}, ErrNotDoser
	}

	for _, mode := range []byte{protocol.ModeTotalsLegacy, protocol.ModeTotalsCurrent} {
		cmd, err := protocol.NewTotalsQuery(mode)
		if err != nil {
			return protocol.DailyTotals{}, err
		}
		if err := s.send(ctx, cmd); err != nil {
			return protocol.DailyTotals{}, err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return protocol.DailyTotals{}, fmt.Errorf("waiting for totals reply: %w", ctx.Err())
		case data, ok := <-s.tr.Notifications():
			if !ok {
				return protocol.DailyTotals{}, errors.New("connection closed while waiting for totals reply")
			}
			resp, err := protocol.Decode(data)
			if err != nil {
				logging.Warn("Discarding undecodable notification", zap.Error(err))
				continue
			}
			if totals, found := resp.DailyTotals(); found {
				return totals, nil
			}
			logging.Debug("Ignoring notification", zap.String("frame", resp.String()))
		}
	}
}
