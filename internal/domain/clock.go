package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time within the single delivery day,
// stored as the offset from midnight.
type TimeOfDay time.Duration

const (
	// NotYet marks a dispatch or delivery time that has not been simulated.
	NotYet TimeOfDay = -1

	// EndOfDay is the deadline given to packages without a time constraint.
	EndOfDay TimeOfDay = TimeOfDay(16*time.Hour + 59*time.Minute + 59*time.Second)
)

// Clock builds a TimeOfDay from hours and minutes.
func Clock(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// TimeOfDayOf drops the date from t.
func TimeOfDayOf(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond()))
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"3:04pm",
	"03:04 PM",
	"3:04:05 PM",
}

// ParseClock accepts 24-hour ("10:20", "16:59:59") and 12-hour ("9:05 am") forms.
// "EOD" maps to EndOfDay.
func ParseClock(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "EOD") {
		return EndOfDay, nil
	}

	norm := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return TimeOfDayOf(t), nil
		}
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}

	return 0, fmt.Errorf("parse clock %q: unrecognized time of day", s)
}

func (t TimeOfDay) IsSet() bool { return t >= 0 }

// Add advances the clock by d.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay { return t + TimeOfDay(d) }

// Sub returns the elapsed duration t - u.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration { return time.Duration(t - u) }

func (t TimeOfDay) Before(u TimeOfDay) bool { return t < u }

func (t TimeOfDay) After(u TimeOfDay) bool { return t > u }

// On anchors the time of day to the date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).Add(time.Duration(t))
}

// String renders "08:00 AM"; unset times render as "--".
func (t TimeOfDay) String() string {
	if !t.IsSet() {
		return "--"
	}
	return time.Time{}.Add(time.Duration(t)).Format("03:04 PM")
}

// Clock24 renders "15:04:05".
func (t TimeOfDay) Clock24() string {
	if !t.IsSet() {
		return ""
	}
	return time.Time{}.Add(time.Duration(t)).Format("15:04:05")
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	if !t.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Clock24())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = NotYet
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("time of day: %w", err)
	}

	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// hoursToDuration converts fractional hours of travel into a duration,
// rounded to the nanosecond.
func hoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours * float64(time.Hour)))
}
