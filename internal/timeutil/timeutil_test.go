package timeutil

import (
	"testing"
	"time"
)

var lima = mustLoadLima()

func mustLoadLima() *time.Location {
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		panic(err)
	}
	return loc
}

func TestDayBounds(t *testing.T) {
	// 03:00 UTC del 7 de enero son las 22:00 del 6 en Lima: el día es el 6.
	instant := time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC)

	start, end := DayBounds(instant, lima)
	if got := start.Format("2006-01-02 15:04:05"); got != "2025-01-06 00:00:00" {
		t.Errorf("start = %s", got)
	}
	if got := end.In(lima).Format("2006-01-02 15:04:05"); got != "2025-01-06 23:59:59" {
		t.Errorf("end = %s", got)
	}
	if !end.Before(start.AddDate(0, 0, 1)) {
		t.Errorf("end debe quedar dentro del día: %v", end)
	}
}

func TestDayKeyCrossesUTCMidnight(t *testing.T) {
	instant := time.Date(2025, 1, 7, 3, 0, 0, 0, time.UTC)
	if got := DayKey(instant, lima); got != "2025-01-06" {
		t.Errorf("DayKey = %s, esperaba 2025-01-06", got)
	}
	if got := DayKey(instant, time.UTC); got != "2025-01-07" {
		t.Errorf("DayKey UTC = %s, esperaba 2025-01-07", got)
	}
}

func TestISOWeekKey(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-01-06", "2025-W02"}, // lunes, arranca la semana 2
		{"2025-01-05", "2025-W01"}, // domingo, cierra la semana 1
		{"2024-12-30", "2025-W01"}, // el lunes 30 ya pertenece al año ISO 2025
		{"2025-12-29", "2026-W01"},
	}
	for _, c := range cases {
		d, err := ParseDate(c.date, lima)
		if err != nil {
			t.Fatalf("ParseDate(%s): %v", c.date, err)
		}
		if got := ISOWeekKey(d, lima); got != c.want {
			t.Errorf("ISOWeekKey(%s) = %s, esperaba %s", c.date, got, c.want)
		}
	}
}

func TestMonthKey(t *testing.T) {
	d, _ := ParseDate("2025-03-31", lima)
	if got := MonthKey(d, lima); got != "2025-03" {
		t.Errorf("MonthKey = %s, esperaba 2025-03", got)
	}
}

func TestParseDateAndEndOfDate(t *testing.T) {
	d, err := ParseDate("2025-01-06", lima)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Hour() != 0 || d.Location() != lima {
		t.Errorf("ParseDate debe dar medianoche en Lima: %v", d)
	}

	end, err := EndOfDate("2025-01-06", lima)
	if err != nil {
		t.Fatalf("EndOfDate: %v", err)
	}
	next, _ := ParseDate("2025-01-07", lima)
	if !end.Before(next) {
		t.Errorf("EndOfDate debe quedar antes de la medianoche siguiente: %v", end)
	}
	if next.Sub(end) != time.Nanosecond {
		t.Errorf("EndOfDate debe ser el último nanosegundo del día: %v", end)
	}

	if _, err := ParseDate("06/01/2025", lima); err == nil {
		t.Errorf("ParseDate debe rechazar formatos que no sean YYYY-MM-DD")
	}
}
