package protocol

import "math"

// Doser mode sub-opcodes. All doser commands ride the 165 family and carry
// PolicyAvoid5A; the firmware quirk was observed on this family.
const (
	ModeDoseSchedule = 21 // 24h schedule, time part
	ModeManualDose   = 27 // one-shot dose; also the schedule amount part
	ModeDoseAuto     = 32 // per-channel auto mode / catch-up toggle
	ModeConfirm      = 4  // order confirmation handshake
)

// Totals query modes (command family 91). Firmware revisions disagree on
// which mode answers; callers probe ModeTotalsCurrent first, then
// ModeTotalsLegacy.
const (
	ModeTotalsCurrent = 34
	ModeTotalsLegacy  = 30
)

// Dose amount limits in tenths of a millilitre (0.2-999.9 mL).
const (
	MinDoseTenths = 2
	MaxDoseTenths = 9999
)

// DoseSetting is one entry of a doser channel's 24-hour schedule. The wire
// protocol programs it in three frames: a time part, an amount part, and the
// catch-up toggle (see the NewDoseSchedule* constructors).
type DoseSetting struct {
	Channel      int // 0-3
	Time         TimeOfDay
	AmountTenths int // tenths of a millilitre, 2-9999
	Weekdays     WeekdaySet
	CatchUp      bool // administer a missed dose late
}

// DoseTenthsFromML converts a millilitre amount to wire tenths, rounding to
// the device's 0.1 mL resolution with ties away from zero. Truncating instead
// would systematically under-dose, which matters when the amount feeds a
// daily schedule.
func DoseTenthsFromML(ml float64) (int, error) {
	tenths := int(math.Round(ml * 10))
	if tenths < MinDoseTenths || tenths > MaxDoseTenths {
		return 0, rangeErr("dose tenths of mL", tenths, MinDoseTenths, MaxDoseTenths)
	}
	return tenths, nil
}

// SplitDoseTenths splits a tenths-of-mL amount into the wire's hi/lo pair:
// hi counts 25.6 mL buckets (256 tenths) and lo is the 0.1 mL remainder.
// This is the same encoding the daily-totals reply uses in reverse
// (value = hi*25.6 + lo*0.1). For the legal input range hi never exceeds 39.
func SplitDoseTenths(tenths int) (hi, lo byte, err error) {
	if tenths < MinDoseTenths || tenths > MaxDoseTenths {
		return 0, 0, rangeErr("dose tenths of mL", tenths, MinDoseTenths, MaxDoseTenths)
	}
	return byte(tenths / 256), byte(tenths % 256), nil
}

// doseChannel validates a doser channel id.
func doseChannel(channel int) error {
	if channel < 0 || channel > 3 {
		return rangeErr("channel", channel, 0, 3)
	}
	return nil
}

// NewManualDose builds the immediate one-shot dose command (165/27):
// params [channel, 0, 0, hi, lo].
func NewManualDose(channel, amountTenths int) (Command, error) {
	if err := doseChannel(channel); err != nil {
		return Command{}, err
	}
	hi, lo, err := SplitDoseTenths(amountTenths)
	if err != nil {
		return Command{}, err
	}
	return Command{
		ID:     CmdTimed,
		Mode:   ModeManualDose,
		Params: []byte{byte(channel), 0, 0, hi, lo},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewDoseScheduleTime builds the time part of a 24-hour schedule entry
// (165/21): params [channel, 1, hour, minute, 0, 0]. The fixed 1 selects the
// 24-hour timer type.
func NewDoseScheduleTime(channel int, t TimeOfDay) (Command, error) {
	if err := doseChannel(channel); err != nil {
		return Command{}, err
	}
	if err := t.validate("schedule"); err != nil {
		return Command{}, err
	}
	return Command{
		ID:     CmdTimed,
		Mode:   ModeDoseSchedule,
		Params: []byte{byte(channel), 1, byte(t.Hour), byte(t.Minute), 0, 0},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewDoseScheduleAmount builds the amount part of a 24-hour schedule entry
// (165/27): params [channel, weekdayMask, 1, 0, hi, lo].
func NewDoseScheduleAmount(channel int, weekdays WeekdaySet, amountTenths int) (Command, error) {
	if err := doseChannel(channel); err != nil {
		return Command{}, err
	}
	hi, lo, err := SplitDoseTenths(amountTenths)
	if err != nil {
		return Command{}, err
	}
	return Command{
		ID:     CmdTimed,
		Mode:   ModeManualDose,
		Params: []byte{byte(channel), weekdays.Mask(), 1, 0, hi, lo},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewDoseCatchUp builds the catch-up toggle for a doser channel (165/32):
// params [channel, 0, catchUp]. Enabling also (re)activates the channel's
// auto mode, so schedule programming sends it last.
func NewDoseCatchUp(channel int, catchUp bool) (Command, error) {
	if err := doseChannel(channel); err != nil {
		return Command{}, err
	}
	var flag byte
	if catchUp {
		flag = 1
	}
	return Command{
		ID:     CmdTimed,
		Mode:   ModeDoseAuto,
		Params: []byte{byte(channel), 0, flag},
		Policy: PolicyAvoid5A,
	}, nil
}

// NewTotalsQuery builds a daily-totals query (91/34 or 91/30, no
// parameters). The reply decodes via Response.DailyTotals.
func NewTotalsQuery(mode byte) (Command, error) {
	if mode != ModeTotalsCurrent && mode != ModeTotalsLegacy {
		return Command{}, rangeErr("totals mode", int(mode), ModeTotalsLegacy, ModeTotalsCurrent)
	}
	return Command{ID: CmdQuery, Mode: mode, Policy: PolicyAvoid5A}, nil
}

// NewOrderConfirmation builds the confirmation handshake frame (mode 4)
// observed ahead of doser schedule programming. The family is caller-chosen
// because captures show both 90/4 and 165/4 variants.
func NewOrderConfirmation(family byte, value byte) (Command, error) {
	if family != CmdLED && family != CmdTimed {
		return Command{}, rangeErr("command family", int(family), CmdLED, CmdTimed)
	}
	return Command{
		ID:     family,
		Mode:   ModeConfirm,
		Params: []byte{value},
		Policy: PolicyAvoid5A,
	}, nil
}
