package protocol

import "time"

// LED mode sub-opcodes.
const (
	ModeManual       = 7  // per-channel manual brightness
	ModeSwitch       = 5  // auto/manual mode switches and setting reset
	ModeSetTime      = 9  // device clock sync
	ModeTimedSetting = 25 // add/modify/delete a timed setting
)

// Brightness sentinel marking a channel inactive/unset in timed settings.
const BrightnessInactive = 255

// TimeOfDay is an hour/minute pair as the protocol encodes it.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
}

// validate rejects out-of-range fields; field names the value in errors.
func (t TimeOfDay) validate(field string) error {
	if t.Hour < 0 || t.Hour > 23 {
		return rangeErr(field+" hour", t.Hour, 0, 23)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return rangeErr(field+" minute", t.Minute, 0, 59)
	}
	return nil
}

// TimedSetting is one sunrise/sunset entry of the device's auto-mode
// schedule. Brightness holds up to three channel values; channels a model
// does not have carry BrightnessInactive. Setting all channels to
// BrightnessInactive deactivates (deletes) the entry for that time window.
// The device firmware allows at most seven entries to coexist; the codec
// keeps no registry and simply encodes whatever it is handed.
type TimedSetting struct {
	Sunrise       TimeOfDay
	Sunset        TimeOfDay
	RampUpMinutes int // 0-150
	Weekdays      WeekdaySet
	Brightness    [3]int // red/white, green, blue; BrightnessInactive if unset
}

// NewManualBrightness builds the manual brightness command (90/7) for one
// channel. Channel 0 is white on single-channel models and red on RGB
// models; 1 is green, 2 is blue. Brightness is a percentage.
//
// Power on/off has no dedicated opcode: sending brightness 0 turns a channel
// off and any non-zero value turns it back on.
func NewManualBrightness(channel, brightness int) (Command, error) {
	if channel < 0 || channel > 2 {
		return Command{}, rangeErr("channel", channel, 0, 2)
	}
	if brightness < 0 || brightness > 100 {
		return Command{}, rangeErr("brightness", brightness, 0, 100)
	}
	return Command{
		ID:     CmdLED,
		Mode:   ModeManual,
		Params: []byte{byte(channel), byte(brightness)},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewEnableAutoMode builds the auto-mode switch command (90/5).
func NewEnableAutoMode() Command {
	return Command{ID: CmdLED, Mode: ModeSwitch, Params: []byte{18, 255, 255}, Policy: PolicyAvoid5A}
}

// NewManualMode builds the manual-mode switch command (90/5).
func NewManualMode() Command {
	return Command{ID: CmdLED, Mode: ModeSwitch, Params: []byte{11, 255, 255}, Policy: PolicyAvoid5A}
}

// NewResetAutoSettings builds the command clearing every timed setting on the
// device (90/5).
func NewResetAutoSettings() Command {
	return Command{ID: CmdLED, Mode: ModeSwitch, Params: []byte{5, 255, 255}, Policy: PolicyAvoid5A}
}

// NewSetTime builds the device clock sync command (90/9). The wire format
// carries the year as an offset from 2000 and the weekday ISO-style, Monday=1
// through Sunday=7.
func NewSetTime(t time.Time) (Command, error) {
	year := t.Year() - 2000
	if year < 0 || year > 255 {
		return Command{}, rangeErr("year", t.Year(), 2000, 2255)
	}
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // time.Sunday is 0, the device wants 7
	}
	return Command{
		ID:   CmdLED,
		Mode: ModeSetTime,
		Params: []byte{
			byte(year), byte(t.Month()), byte(weekday),
			byte(t.Hour()), byte(t.Minute()), byte(t.Second()),
		},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewAddTimedSetting builds the add/modify command for one schedule entry
// (165/25). An entry is keyed on the device by its time window and weekday
// mask; re-sending with different brightness modifies it in place.
func NewAddTimedSetting(ts TimedSetting) (Command, error) {
	if err := ts.Sunrise.validate("sunrise"); err != nil {
		return Command{}, err
	}
	if err := ts.Sunset.validate("sunset"); err != nil {
		return Command{}, err
	}
	if ts.RampUpMinutes < 0 || ts.RampUpMinutes > 150 {
		return Command{}, rangeErr("ramp-up minutes", ts.RampUpMinutes, 0, 150)
	}
	for _, b := range ts.Brightness {
		if b != BrightnessInactive && (b < 0 || b > 100) {
			return Command{}, rangeErr("brightness", b, 0, 100)
		}
	}
	return Command{
		ID:   CmdTimed,
		Mode: ModeTimedSetting,
		Params: []byte{
			byte(ts.Sunrise.Hour), byte(ts.Sunrise.Minute),
			byte(ts.Sunset.Hour), byte(ts.Sunset.Minute),
			byte(ts.RampUpMinutes), ts.Weekdays.Mask(),
			byte(ts.Brightness[0]), byte(ts.Brightness[1]), byte(ts.Brightness[2]),
			255, 255, 255, 255, 255,
		},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewDeleteTimedSetting builds the delete command for a schedule entry
// (165/25): the same layout as NewAddTimedSetting with every brightness
// channel set to the inactive sentinel.
func NewDeleteTimedSetting(sunrise, sunset TimeOfDay, rampUpMinutes int, weekdays WeekdaySet) (Command, error) {
	return NewAddTimedSetting(TimedSetting{
		Sunrise:       sunrise,
		Sunset:        sunset,
		RampUpMinutes: rampUpMinutes,
		Weekdays:      weekdays,
		Brightness:    [3]int{BrightnessInactive, BrightnessInactive, BrightnessInactive},
	})
}

// NewRawCommand wraps caller-supplied bytes unmodified. This is the escape
// hatch for protocol exploration; nothing is validated beyond what BuildFrame
// itself enforces. Use ValidateRaw to learn whether the catalog recognizes
// the commandId/mode pair.
func NewRawCommand(id, mode byte, params []byte) Command {
	return Command{ID: id, Mode: mode, Params: params}
}

// catalogedModes lists the commandId/mode pairs the catalog can produce or
// decode. Raw frames outside this set still pass through; ValidateRaw only
// flags them.
var catalogedModes = map[[2]byte]bool{
	{CmdLED, ModeManual}:          true,
	{CmdLED, ModeSwitch}:          true,
	{CmdLED, ModeSetTime}:         true,
	{CmdLED, ModeConfirm}:         true,
	{CmdTimed, ModeTimedSetting}:  true,
	{CmdTimed, ModeManualDose}:    true,
	{CmdTimed, ModeDoseSchedule}:  true,
	{CmdTimed, ModeDoseAuto}:      true,
	{CmdTimed, ModeConfirm}:       true,
	{CmdQuery, ModeTotalsCurrent}: true,
	{CmdQuery, ModeTotalsLegacy}:  true,
}

// ValidateRaw reports whether the catalog recognizes the commandId/mode pair.
// Unknown pairs return ErrUnsupportedCommand; callers may still send the
// frame, the error is advisory.
func ValidateRaw(id, mode byte) error {
	if !catalogedModes[[2]byte{id, mode}] {
		return ErrUnsupportedCommand
	}
	return nil
}
