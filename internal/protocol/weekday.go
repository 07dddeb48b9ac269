package protocol

import (
	"fmt"
	"strings"
)

// Weekday identifies one day of the week in protocol bit order.
type Weekday uint8

// Weekdays in mask bit order: bit 0 is Monday through bit 6 is Sunday.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

// String returns the lowercase English day name.
func (d Weekday) String() string {
	if int(d) < len(weekdayNames) {
		return weekdayNames[d]
	}
	return "invalid"
}

// ParseWeekday parses a day name ("monday".."sunday", or "everyday" via
// ParseWeekdays). Matching is case-insensitive.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range weekdayNames {
		if s == name {
			return Weekday(i), true
		}
	}
	return 0, false
}

// WeekdaySet is a set of weekdays encoded as the protocol's 7-bit mask.
// The upper bit of the byte is meaningless and always cleared, which makes
// encode/decode a bijection over the 7 significant bits.
type WeekdaySet byte

// EveryDay is the reserved all-days value (all seven bits set).
const EveryDay WeekdaySet = 0x7F

// NewWeekdaySet builds a set from individual days.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << d
	}
	return s & EveryDay
}

// DecodeWeekdayMask interprets a wire byte as a WeekdaySet, discarding the
// meaningless high bit.
func DecodeWeekdayMask(b byte) WeekdaySet {
	return WeekdaySet(b) & EveryDay
}

// Mask returns the wire encoding of the set.
func (s WeekdaySet) Mask() byte {
	return byte(s & EveryDay)
}

// Contains reports whether the set includes the given day.
func (s WeekdaySet) Contains(d Weekday) bool {
	return s&(1<<d) != 0
}

// With returns a copy of the set with the given day added.
func (s WeekdaySet) With(d Weekday) WeekdaySet {
	return (s | 1<<d) & EveryDay
}

// String renders the set for logs ("everyday", "monday|thursday", "none").
func (s WeekdaySet) String() string {
	s &= EveryDay
	if s == EveryDay {
		return "everyday"
	}
	if s == 0 {
		return "none"
	}
	var names []string
	for d := Monday; d <= Sunday; d++ {
		if s.Contains(d) {
			names = append(names, d.String())
		}
	}
	return strings.Join(names, "|")
}

// ParseWeekdays parses a list of day names into a set. The special name
// "everyday" selects all days regardless of what else is listed.
func ParseWeekdays(names []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, name := range names {
		if strings.EqualFold(strings.TrimSpace(name), "everyday") {
			return EveryDay, nil
		}
		d, ok := ParseWeekday(name)
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", name)
		}
		s = s.With(d)
	}
	if s == 0 {
		s = EveryDay // no selection means every day, matching the vendor app
	}
	return s, nil
}
