package Controllers_test

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"Flotilla/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseLandsOnOpenTripImplicitly(t *testing.T) {
	app, db := newTestApp(t)
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-301", 100)

	resp, body := doJSON(t, app, http.MethodPost, "/api/viajes", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"origen":     "Lima",
		"destino":    "Ica",
		"kmInicial":  100,
	}, sessionCookie(t, driver))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tripID := body["data"].(map[string]interface{})["ID"].(float64)

	resp, body = doJSON(t, app, http.MethodPost, "/api/gastos", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"tipo":       Models.ExpenseFuel,
		"monto":      180.50,
		"galones":    12.5,
	}, sessionCookie(t, driver))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, tripID, data["viajeId"])
	assert.Equal(t, 180.50, data["monto"])
}

func TestExpenseWithoutOpenTripIsRejected(t *testing.T) {
	app, db := newTestApp(t)
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-303", 100)

	resp, body := doJSON(t, app, http.MethodPost, "/api/gastos", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"tipo":       Models.ExpenseToll,
		"monto":      25,
	}, sessionCookie(t, driver))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "viaje en curso")
}

func TestExpenseInvalidType(t *testing.T) {
	app, db := newTestApp(t)
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-302", 100)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/viajes", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"origen":     "Lima",
		"destino":    "Ica",
		"kmInicial":  100,
	}, sessionCookie(t, driver))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/gastos", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"tipo":       "GASOLINA",
		"monto":      50,
	}, sessionCookie(t, driver))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExpenseRequiresVehicle(t *testing.T) {
	app, db := newTestApp(t)
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-304", 100)

	resp, body := doJSON(t, app, http.MethodPost, "/api/viajes", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"origen":     "Lima",
		"destino":    "Ica",
		"kmInicial":  100,
	}, sessionCookie(t, driver))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tripID := body["data"].(map[string]interface{})["ID"]

	// Even with an explicit trip id the vehicle must be given.
	resp, body = doJSON(t, app, http.MethodPost, "/api/gastos", map[string]interface{}{
		"viajeId": tripID,
		"tipo":    Models.ExpenseToll,
		"monto":   25,
	}, sessionCookie(t, driver))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "vehiculoId")

	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")
	resp, _ = doJSON(t, app, http.MethodPost, "/api/gastos", map[string]interface{}{
		"tipo":  Models.ExpenseOther,
		"monto": 10,
	}, sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadReceiptReturnsURL(t *testing.T) {
	app, db := newTestApp(t)
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")

	img := image.NewRGBA(image.Rect(0, 0, 1600, 8))
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("imagen", "comprobante.png")
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/gastos/comprobante", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.AddCookie(sessionCookie(t, driver))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}
