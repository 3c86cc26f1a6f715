package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"Flotilla/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateVehicleWithDocuments(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	resp, body := doJSON(t, app, http.MethodPost, "/api/vehiculos", map[string]interface{}{
		"placa":       " abc-201 ",
		"modelo":      "Camion 10T",
		"capacidad":   10000,
		"kilometraje": 40000,
		"soat": map[string]interface{}{
			"numero":         "S-001",
			"fechaVigencia":  "2026-01-01",
			"fechaCaducidad": "2027-01-01",
		},
	}, sessionCookie(t, admin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "ABC-201", data["placa"])
	assert.Equal(t, Models.VehicleAvailable, data["estado"])
	require.NotNil(t, data["soat"])

	var vehicle Models.Vehicle
	require.NoError(t, db.Preload("Soat").Where("plate = ?", "ABC-201").First(&vehicle).Error)
	require.NotNil(t, vehicle.Soat)
	assert.Equal(t, "S-001", vehicle.Soat.Number)
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	payload := map[string]interface{}{
		"placa":     "ABC-202",
		"modelo":    "Furgoneta",
		"capacidad": 1500,
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/vehiculos", payload, sessionCookie(t, admin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, "/api/vehiculos", payload, sessionCookie(t, admin))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "La placa ya está registrada.", body["error"])
}

func TestCreateVehicleValidationMessages(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	resp, body := doJSON(t, app, http.MethodPost, "/api/vehiculos", map[string]interface{}{
		"modelo": "Trailer",
	}, sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "placa")
}

func TestCreateVehicleRejectsInvertedDocumentDates(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	resp, _ := doJSON(t, app, http.MethodPost, "/api/vehiculos", map[string]interface{}{
		"placa":     "ABC-203",
		"modelo":    "Camion 5T",
		"capacidad": 5000,
		"soat": map[string]interface{}{
			"numero":         "S-002",
			"fechaVigencia":  "2027-01-01",
			"fechaCaducidad": "2026-01-01",
		},
	}, sessionCookie(t, admin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateStateRejectsVehicleEnRoute(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-204", 100)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/viajes", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"origen":     "Lima",
		"destino":    "Ayacucho",
		"kmInicial":  100,
	}, sessionCookie(t, driver))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/vehiculos/%d/estado", vehicle.ID), map[string]interface{}{
		"estado": Models.VehicleMaintenance,
	}, sessionCookie(t, admin))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateStateToMaintenanceBlocksTrips(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")
	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-205", 100)

	resp, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/vehiculos/%d/estado", vehicle.ID), map[string]interface{}{
		"estado": Models.VehicleMaintenance,
	}, sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/viajes", map[string]interface{}{
		"vehiculoId": vehicle.ID,
		"origen":     "Lima",
		"destino":    "Nazca",
		"kmInicial":  100,
	}, sessionCookie(t, driver))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAssignDriverValidatesRole(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")
	vehicle := createVehicle(t, db, "ABC-206", 100)

	// Assigning an admin as driver must fail: only CONDUCTOR users qualify.
	resp, _ := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/vehiculos/%d/asignar-conductor", vehicle.ID), map[string]interface{}{
		"conductorId": admin.ID,
	}, sessionCookie(t, admin))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	driver := createUser(t, db, Models.RoleDriver, "conductor1@flotilla.pe")
	resp, _ = doJSON(t, app, http.MethodPatch, fmt.Sprintf("/api/vehiculos/%d/asignar-conductor", vehicle.ID), map[string]interface{}{
		"conductorId": driver.ID,
	}, sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated Models.Vehicle
	require.NoError(t, db.First(&updated, vehicle.ID).Error)
	require.NotNil(t, updated.CurrentDriverID)
	assert.Equal(t, driver.ID, *updated.CurrentDriverID)
}

func TestDocumentsStatusPhrasing(t *testing.T) {
	app, db := newTestApp(t)
	admin := createUser(t, db, Models.RoleAdmin, "admin@flotilla.pe")

	// The handler measures from the start of the current day, so the
	// fixtures anchor there too.
	today := time.Now().Truncate(24 * time.Hour)

	expiring := createVehicle(t, db, "ABC-207", 100)
	require.NoError(t, db.Create(&Models.Soat{
		VehicleID:  expiring.ID,
		Number:     "S-003",
		ValidFrom:  today.AddDate(-1, 0, 0),
		ExpiryDate: today.Add(72 * time.Hour),
	}).Error)

	expired := createVehicle(t, db, "ABC-208", 100)
	require.NoError(t, db.Create(&Models.CirculationCertificate{
		VehicleID:  expired.ID,
		Number:     "C-001",
		ValidFrom:  today.AddDate(-2, 0, 0),
		ExpiryDate: today.Add(-120 * time.Hour),
	}).Error)

	resp, body := doJSON(t, app, http.MethodGet, "/api/documentos", nil, sessionCookie(t, admin))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	docs := body["data"].([]interface{})
	require.Len(t, docs, 2)

	statuses := map[string]string{}
	for _, raw := range docs {
		doc := raw.(map[string]interface{})
		statuses[doc["placa"].(string)] = doc["estado"].(string)
	}
	assert.Equal(t, "Vence en 3 días", statuses["ABC-207"])
	assert.Equal(t, "Venció hace 5 días", statuses["ABC-208"])
}
