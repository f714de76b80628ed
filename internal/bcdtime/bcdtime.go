// Package bcdtime converts between the MJD+BCD broadcast time format used by
// ARIB/DVB sections and a calendar DateTime, and provides DateTime
// arithmetic over a single canonical linear-time epoch.
//
// Broadcast streams encode absolute time as a 5-byte field: a 16-bit
// Modified Julian Date followed by a 3-byte BCD (binary-coded decimal)
// time-of-day. This package implements the ARIB STD-B10 conversion formula
// between that wire format and calendar fields, plus the DateTime value
// type used throughout the table decoder and EPG database.
package bcdtime

import (
	"errors"
	"time"
)

// ErrOverflow is returned by Offset/OffsetSeconds/OffsetMilliseconds when
// the result would fall outside a representable calendar date.
var ErrOverflow = errors.New("bcdtime: offset overflow")

// DateTime is a calendar-oriented timestamp, mirroring LibISDB's DateTime.
// Second is allowed to reach 60 to represent a leap second.
type DateTime struct {
	Year        int
	Month       int // 1-12
	Day         int // 1-31
	DayOfWeek   int // 0=Sunday .. 6=Saturday
	Hour        int // 0-23
	Minute      int // 0-59
	Second      int // 0-60
	Millisecond int // 0-999
}

// Reset zeroes all fields, yielding an invalid DateTime.
func (d *DateTime) Reset() {
	*d = DateTime{}
}

// IsValid reports whether every field is within its defined range and the
// year is at least 1.
func (d DateTime) IsValid() bool {
	if d.Year < 1 {
		return false
	}
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	if d.Day < 1 || d.Day > 31 {
		return false
	}
	if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
		return false
	}
	if d.Hour < 0 || d.Hour > 23 {
		return false
	}
	if d.Minute < 0 || d.Minute > 59 {
		return false
	}
	if d.Second < 0 || d.Second > 60 {
		return false
	}
	if d.Millisecond < 0 || d.Millisecond > 999 {
		return false
	}
	return true
}

// IsLeapYear reports whether year is a leap year in the proleptic
// Gregorian calendar.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

var daysInMonthTable = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DaysInMonth returns the number of days in the given month (1-12) of year.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonthTable[month-1]
}

// GetDayOfYear returns the 1-based ordinal day of the year for y/m/d.
func GetDayOfYear(year, month, day int) int {
	n := day
	for m := 1; m < month; m++ {
		n += DaysInMonth(year, m)
	}
	return n
}

// GetDayOfWeek returns the day of week (0=Sunday) for y/m/d using Zeller's
// congruence.
func GetDayOfWeek(year, month, day int) int {
	y, m := year, month
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (day + (13*(m+1))/5 + k + k/4 + j/4 + 5*j) % 7
	// h: 0=Saturday .. 6=Friday; remap to 0=Sunday .. 6=Saturday.
	return (h + 6) % 7
}

// toTime converts d (interpreted as UTC, ignoring DayOfWeek) to a time.Time.
func (d DateTime) toTime() time.Time {
	ns := d.Millisecond * int(time.Millisecond)
	return time.Date(d.Year, time.Month(d.Month), d.Day, d.Hour, d.Minute, d.Second, ns, time.UTC)
}

func fromTime(t time.Time) DateTime {
	t = t.UTC()
	y, m, day := t.Date()
	return DateTime{
		Year:        y,
		Month:       int(m),
		Day:         day,
		DayOfWeek:   int(t.Weekday()),
		Hour:        t.Hour(),
		Minute:      t.Minute(),
		Second:      t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// SetDayOfWeek recomputes DayOfWeek from Year/Month/Day.
func (d *DateTime) SetDayOfWeek() {
	d.DayOfWeek = GetDayOfWeek(d.Year, d.Month, d.Day)
}

// Compare returns -1, 0, or 1 according to whether d is before, equal to,
// or after other.
func (d DateTime) Compare(other DateTime) int {
	a, b := d.GetLinearMilliseconds(), other.GetLinearMilliseconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether d is strictly before other.
func (d DateTime) Before(other DateTime) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d DateTime) After(other DateTime) bool { return d.Compare(other) > 0 }

// Equal reports whether d and other represent the same instant.
func (d DateTime) Equal(other DateTime) bool { return d.Compare(other) == 0 }

// DiffMilliseconds returns d-other in milliseconds (signed).
func (d DateTime) DiffMilliseconds(other DateTime) int64 {
	return d.GetLinearMilliseconds() - other.GetLinearMilliseconds()
}

// DiffSeconds returns d-other in seconds (signed, truncated toward zero).
func (d DateTime) DiffSeconds(other DateTime) int64 {
	return d.DiffMilliseconds(other) / 1000
}

// Diff returns d-other as a time.Duration.
func (d DateTime) Diff(other DateTime) time.Duration {
	return time.Duration(d.DiffMilliseconds(other)) * time.Millisecond
}

// GetLinearSeconds returns the canonical monotonic integer representation
// of d: Unix seconds (UTC), per spec.md's Design Notes resolution of the
// Windows-FILETIME-vs-Unix-epoch open question.
func (d DateTime) GetLinearSeconds() int64 {
	return d.toTime().Unix()
}

// GetLinearMilliseconds is the millisecond-resolution counterpart of
// GetLinearSeconds.
func (d DateTime) GetLinearMilliseconds() int64 {
	t := d.toTime()
	return t.Unix()*1000 + int64(t.Nanosecond())/int64(time.Millisecond)
}

// FromLinearSeconds is the inverse of GetLinearSeconds.
func FromLinearSeconds(sec int64) DateTime {
	return fromTime(time.Unix(sec, 0))
}

// FromLinearMilliseconds is the inverse of GetLinearMilliseconds.
func FromLinearMilliseconds(ms int64) DateTime {
	sec := ms / 1000
	rem := ms % 1000
	if rem < 0 {
		rem += 1000
		sec--
	}
	return fromTime(time.Unix(sec, rem*int64(time.Millisecond)))
}

// OffsetMilliseconds returns d shifted by ms milliseconds. It fails
// (returns ErrOverflow) rather than wrap when the result falls outside a
// representable calendar year.
func (d DateTime) OffsetMilliseconds(ms int64) (DateTime, error) {
	result := FromLinearMilliseconds(d.GetLinearMilliseconds() + ms)
	if result.Year < 1 || result.Year > 9999 {
		return DateTime{}, ErrOverflow
	}
	return result, nil
}

// OffsetSeconds returns d shifted by sec seconds.
func (d DateTime) OffsetSeconds(sec int64) (DateTime, error) {
	return d.OffsetMilliseconds(sec * 1000)
}

// Offset returns d shifted by a time.Duration.
func (d DateTime) Offset(delta time.Duration) (DateTime, error) {
	return d.OffsetMilliseconds(delta.Milliseconds())
}

// TruncateToSeconds zeroes the millisecond field.
func (d DateTime) TruncateToSeconds() DateTime { d.Millisecond = 0; return d }

// TruncateToMinutes zeroes seconds and milliseconds.
func (d DateTime) TruncateToMinutes() DateTime { d.Second, d.Millisecond = 0, 0; return d }

// TruncateToHours zeroes minutes, seconds, and milliseconds.
func (d DateTime) TruncateToHours() DateTime {
	d.Minute, d.Second, d.Millisecond = 0, 0, 0
	return d
}

// TruncateToDays zeroes the time-of-day fields.
func (d DateTime) TruncateToDays() DateTime {
	d.Hour, d.Minute, d.Second, d.Millisecond = 0, 0, 0, 0
	return d
}

// NowUTC returns the current instant as a DateTime in UTC.
func NowUTC() DateTime {
	return fromTime(time.Now().UTC())
}

// NowLocal returns the current instant as a DateTime in the local zone's
// wall-clock fields (still arithmetically treated as UTC internally, as
// LibISDB's DateTime carries no zone).
func NowLocal() DateTime {
	t := time.Now()
	_, offset := t.Zone()
	return fromTime(t.Add(time.Duration(offset) * time.Second))
}

// ──────────────────────────── MJD / BCD ────────────────────────────

// ParseMJDTime converts a 16-bit Modified Julian Date to year/month/day and
// day-of-week using the ARIB STD-B10 formula.
func ParseMJDTime(mjd uint16) (year, month, day, dayOfWeek int) {
	m := float64(mjd)
	yd := int((m - 15078.2) / 365.25)
	md := int((m - 14956.1 - float64(int(float64(yd)*365.25))) / 30.6001)
	k := 0
	if md == 14 || md == 15 {
		k = 1
	}
	day = int(mjd) - 14956 - int(float64(yd)*365.25) - int(float64(md)*30.6001)
	year = yd + k + 1900
	month = md - 1 - k*12
	dayOfWeek = (int(mjd) + 3) % 7
	return
}

// MakeMJDTime is the inverse of ParseMJDTime.
func MakeMJDTime(year, month, day int) uint16 {
	y, m := year, month
	if m <= 2 {
		m += 12
		y--
	}
	v := int(float64(y)*365.25) + (y / 400) - (y / 100) +
		int(float64(m-2)*30.59) + day - 678912
	return uint16(v)
}

// MJDTimeToDateTime fills a DateTime's date fields from an MJD value,
// leaving the time-of-day fields at zero.
func MJDTimeToDateTime(mjd uint16) DateTime {
	var d DateTime
	d.Year, d.Month, d.Day, d.DayOfWeek = ParseMJDTime(mjd)
	return d
}

// DateTimeToMJDTime extracts the MJD value for d's calendar date.
func DateTimeToMJDTime(d DateTime) uint16 {
	return MakeMJDTime(d.Year, d.Month, d.Day)
}

// GetBCD decodes a single BCD byte (two decimal nibbles) to an integer.
// Nibbles greater than 9 pass through arithmetically rather than failing,
// matching the source's lenient default.
func GetBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0F)
}

// MakeBCD encodes an integer 0-99 as a single BCD byte.
func MakeBCD(v int) byte {
	if v < 0 {
		v = 0
	}
	return byte((v/10)<<4 | (v % 10))
}

// ParseBCDTime decodes a 3-byte HH/MM/SS BCD triple.
func ParseBCDTime(b []byte) (hour, minute, second int) {
	if len(b) < 3 {
		return 0, 0, 0
	}
	return GetBCD(b[0]), GetBCD(b[1]), GetBCD(b[2])
}

// MakeBCDTime encodes hour/minute/second into a 3-byte BCD triple.
func MakeBCDTime(hour, minute, second int) [3]byte {
	return [3]byte{MakeBCD(hour), MakeBCD(minute), MakeBCD(second)}
}

// BCDTimeToSecond converts a 3-byte BCD HH:MM:SS to a second count.
// All-0xFF ("undefined") decodes to 0.
func BCDTimeToSecond(b []byte) uint32 {
	if len(b) < 3 {
		return 0
	}
	if b[0] == 0xFF && b[1] == 0xFF && b[2] == 0xFF {
		return 0
	}
	return uint32(GetBCD(b[0]))*3600 + uint32(GetBCD(b[1]))*60 + uint32(GetBCD(b[2]))
}

// BCDTimeHMToMinute converts a packed 16-bit BCD HH:MM value (as carried by
// the local time offset descriptor's time_of_change/next_time_of_change
// fields) to a minute count.
func BCDTimeHMToMinute(bcd uint16) uint16 {
	hour := (bcd>>12)*10 + ((bcd >> 8) & 0x0F)
	minute := ((bcd>>4)&0x0F)*10 + (bcd & 0x0F)
	return hour*60 + minute
}

// MJDBCDTimeToDateTime decodes the 5-byte broadcast time field (2-byte MJD
// + 3-byte BCD time) into a DateTime. All-0xFF across all 5 bytes means
// "undefined" and reports ok=false.
func MJDBCDTimeToDateTime(data []byte) (DateTime, bool) {
	var d DateTime
	if len(data) < 5 {
		return d, false
	}
	if data[0] == 0xFF && data[1] == 0xFF && data[2] == 0xFF && data[3] == 0xFF && data[4] == 0xFF {
		return d, false
	}
	mjd := uint16(data[0])<<8 | uint16(data[1])
	d.Year, d.Month, d.Day, d.DayOfWeek = ParseMJDTime(mjd)
	d.Hour, d.Minute, d.Second = ParseBCDTime(data[2:5])
	return d, true
}

// DateTimeToMJDBCD is the inverse of MJDBCDTimeToDateTime.
func DateTimeToMJDBCD(d DateTime) [5]byte {
	mjd := MakeMJDTime(d.Year, d.Month, d.Day)
	bcd := MakeBCDTime(d.Hour, d.Minute, d.Second)
	return [5]byte{byte(mjd >> 8), byte(mjd), bcd[0], bcd[1], bcd[2]}
}

// ParseBCDDuration decodes a 3-byte BCD HH:MM:SS duration into a
// time.Duration. All-0xFF decodes to 0.
func ParseBCDDuration(b []byte) time.Duration {
	return time.Duration(BCDTimeToSecond(b)) * time.Second
}
