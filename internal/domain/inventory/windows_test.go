package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
)

func TestWindowsAt_SemanaEmpiezaLunes(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)
	// jueves 15 de octubre de 2026, 14:30
	now := time.Date(2026, time.October, 15, 14, 30, 0, 0, loc)

	w := inventory.WindowsAt(now)

	assert.Equal(t, time.Date(2026, time.October, 15, 0, 0, 0, 0, loc), w.TodayStart)
	assert.Equal(t, time.Date(2026, time.October, 12, 0, 0, 0, 0, loc), w.WeekStart)
	assert.Equal(t, time.Monday, w.WeekStart.Weekday())
	assert.Equal(t, time.Date(2026, time.October, 1, 0, 0, 0, 0, loc), w.MonthStart)
}

func TestWindowsAt_Domingo(t *testing.T) {
	now := time.Date(2026, time.November, 1, 9, 0, 0, 0, time.UTC)

	w := inventory.WindowsAt(now)

	assert.Equal(t, time.Date(2026, time.October, 26, 0, 0, 0, 0, time.UTC), w.WeekStart)
	assert.Equal(t, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), w.MonthStart)
}
