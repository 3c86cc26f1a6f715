package Controllers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Flotilla/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestTripsReportWorkbook(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-701", 1000)

	trip := closedTrip(t, db, driver.ID, vehicle.ID, 250)
	require.NoError(t, db.Create(&Models.Expense{
		TripID: trip.ID, Type: Models.ExpenseFuel, Amount: 300, Date: time.Now(),
	}).Error)
	require.NoError(t, db.Create(&Models.Expense{
		TripID: trip.ID, Type: Models.ExpenseToll, Amount: 45.5, Date: time.Now(),
	}).Error)

	req := httptest.NewRequest(http.MethodGet, "/api/reportes/viajes", nil)
	req.AddCookie(sessionCookie(t, admin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "reporte-viajes")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	workbook, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Viajes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Placa", rows[0][0])
	assert.Equal(t, "Total Gastos", rows[0][9])
	assert.Equal(t, "ABC-701", rows[1][0])
	assert.Equal(t, "345.5", rows[1][9])
}

func TestTripsReportRejectsBadDates(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	req := httptest.NewRequest(http.MethodGet, "/api/reportes/viajes?desde=ayer", nil)
	req.AddCookie(sessionCookie(t, admin))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
