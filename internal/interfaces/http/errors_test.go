package http_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger-api/internal/domain/inventory"
	apphttp "github.com/jhoicas/inventario-ledger-api/internal/interfaces/http"
)

func TestParseDateParam_FechaSinHoraEnZonaLocal(t *testing.T) {
	from, err := apphttp.ParseDateParam("2026-10-15", false)
	require.NoError(t, err)
	require.NotNil(t, from)
	assert.Equal(t, time.Local, from.Location())

	// El inicio del día coincide con la ventana "hoy" de las estadísticas.
	noon := time.Date(2026, 10, 15, 12, 0, 0, 0, time.Local)
	assert.True(t, from.Equal(inventory.WindowsAt(noon).TodayStart))

	to, err := apphttp.ParseDateParam("2026-10-15", true)
	require.NoError(t, err)
	assert.True(t, to.After(noon))
	assert.Equal(t, 15, to.Day())
}

func TestParseDateParam_RFC3339ConservaZona(t *testing.T) {
	got, err := apphttp.ParseDateParam("2026-10-15T08:30:00-05:00", true)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-15T13:30:00Z", got.UTC().Format(time.RFC3339))
}

func TestParseDateParam_VacioEInvalido(t *testing.T) {
	got, err := apphttp.ParseDateParam("  ", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = apphttp.ParseDateParam("ayer", false)
	assert.Error(t, err)
}
