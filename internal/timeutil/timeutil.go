// Package timeutil: límites de día y llaves de semana/mes en la zona horaria
// del negocio. Los cortes de día se calculan en esa zona (America/Lima), no en UTC.
package timeutil

import (
	"fmt"
	"time"
)

// DayBounds devuelve [00:00:00, 23:59:59.999999999] del día de t en loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// TodayBounds: límites del día actual en loc.
func TodayBounds(loc *time.Location) (time.Time, time.Time) {
	return DayBounds(time.Now(), loc)
}

// DayKey: llave de agrupación diaria ("2006-01-02") en loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// ISOWeekKey: llave de semana ISO ("2025-W03", lunes como inicio) en loc.
func ISOWeekKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthKey: llave de mes ("2006-01") en loc.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

// ParseDate interpreta una fecha "YYYY-MM-DD" como medianoche en loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

// EndOfDate: fin del día "YYYY-MM-DD" en loc, para filtros <=.
func EndOfDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, err
	}
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
}
