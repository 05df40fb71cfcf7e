package inventory

import "time"

// Windows son los inicios de los periodos usados por las estadísticas de movimientos.
type Windows struct {
	TodayStart time.Time
	WeekStart  time.Time // lunes (semana ISO)
	MonthStart time.Time
}

// WindowsAt calcula inicio de día, semana ISO y mes calendario en la zona horaria de now.
func WindowsAt(now time.Time) Windows {
	loc := now.Location()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	// Weekday: domingo = 0; la semana ISO empieza el lunes.
	offset := (int(now.Weekday()) + 6) % 7
	return Windows{
		TodayStart: todayStart,
		WeekStart:  todayStart.AddDate(0, 0, -offset),
		MonthStart: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc),
	}
}
