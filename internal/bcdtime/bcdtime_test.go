package bcdtime

import "testing"

func TestParseMJDTime_S1(t *testing.T) {
	year, month, day, dow := ParseMJDTime(58849)
	if year != 2020 || month != 1 || day != 1 {
		t.Fatalf("ParseMJDTime(58849) = %04d-%02d-%02d, want 2020-01-01", year, month, day)
	}
	if dow != 3 {
		t.Fatalf("day of week = %d, want 3 (Wednesday)", dow)
	}
}

func TestMakeMJDTime_RoundTrip(t *testing.T) {
	// MJD is a 16-bit field, so the sweep stops at 65535 (2038-04-22).
	for mjd := 15079; mjd <= 65535; mjd += 37 {
		year, month, day, _ := ParseMJDTime(uint16(mjd))
		got := MakeMJDTime(year, month, day)
		if int(got) != mjd {
			t.Fatalf("round trip MJD %d -> %04d-%02d-%02d -> %d", mjd, year, month, day, got)
		}
	}
}

func TestParseBCDTime_S2(t *testing.T) {
	hour, minute, second := ParseBCDTime([]byte{0x12, 0x34, 0x56})
	if hour != 12 || minute != 34 || second != 56 {
		t.Fatalf("ParseBCDTime = %02d:%02d:%02d, want 12:34:56", hour, minute, second)
	}
	bcd := MakeBCDTime(12, 34, 56)
	if bcd != [3]byte{0x12, 0x34, 0x56} {
		t.Fatalf("MakeBCDTime(12,34,56) = % x, want 12 34 56", bcd)
	}
}

func TestBCDTimeToSecond_Undefined(t *testing.T) {
	if s := BCDTimeToSecond([]byte{0xFF, 0xFF, 0xFF}); s != 0 {
		t.Fatalf("undefined BCD time = %d, want 0", s)
	}
}

func TestMJDBCDTimeToDateTime_Undefined(t *testing.T) {
	_, ok := MJDBCDTimeToDateTime([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	if ok {
		t.Fatal("all-0xFF broadcast time should report ok=false")
	}
}

func TestMJDBCDTimeToDateTime(t *testing.T) {
	// MJD 58849 (2020-01-01) + BCD 12:34:56.
	d, ok := MJDBCDTimeToDateTime([]byte{0xE5, 0xE1, 0x12, 0x34, 0x56})
	if !ok {
		t.Fatal("expected ok=true")
	}
	if d.Year != 2020 || d.Month != 1 || d.Day != 1 || d.Hour != 12 || d.Minute != 34 || d.Second != 56 {
		t.Fatalf("got %+v", d)
	}
}

func TestLinearSecondsRoundTrip(t *testing.T) {
	cases := []DateTime{
		{Year: 2020, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 1999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59},
		{Year: 2038, Month: 1, Day: 19, Hour: 3, Minute: 14, Second: 7},
	}
	for _, d := range cases {
		d.SetDayOfWeek()
		ls := d.GetLinearSeconds()
		got := FromLinearSeconds(ls)
		if got.Compare(d) != 0 {
			t.Fatalf("round trip %+v -> %d -> %+v", d, ls, got)
		}
	}
}

func TestLinearMillisecondsRoundTrip(t *testing.T) {
	d := DateTime{Year: 2021, Month: 6, Day: 15, Hour: 10, Minute: 20, Second: 30, Millisecond: 123}
	d.SetDayOfWeek()
	ms := d.GetLinearMilliseconds()
	got := FromLinearMilliseconds(ms)
	if got.Compare(d) != 0 || got.Millisecond != d.Millisecond {
		t.Fatalf("round trip %+v -> %d -> %+v", d, ms, got)
	}
}

func TestCompareOrdering(t *testing.T) {
	a := DateTime{Year: 2020, Month: 1, Day: 1}
	b := DateTime{Year: 2020, Month: 1, Day: 2}
	if !a.Before(b) || b.Before(a) {
		t.Fatal("expected a < b")
	}
	if !a.Equal(a) {
		t.Fatal("expected a == a")
	}
}

func TestOffsetOverflow(t *testing.T) {
	d := DateTime{Year: 9999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59}
	if _, err := d.OffsetSeconds(3600 * 24 * 400); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestIsValid(t *testing.T) {
	valid := DateTime{Year: 2020, Month: 2, Day: 29, Hour: 23, Minute: 59, Second: 60}
	if !valid.IsValid() {
		t.Fatal("expected valid (leap second allowed)")
	}
	invalid := DateTime{Year: 2020, Month: 13, Day: 1}
	if invalid.IsValid() {
		t.Fatal("month 13 should be invalid")
	}
}
