package Models

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapDBError(t *testing.T) {
	assert.NoError(t, MapDBError(nil, "El vehículo", ""))

	err := MapDBError(gorm.ErrRecordNotFound, "El vehículo", "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "El vehículo")

	err = MapDBError(errors.New("UNIQUE constraint failed: vehicles.plate"), "El vehículo", "La placa ya está registrada.")
	assert.ErrorIs(t, err, ErrConflict)

	err = MapDBError(errors.New(`duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`), "El usuario", "El correo ya está registrado.")
	assert.ErrorIs(t, err, ErrConflict)

	plain := errors.New("disk I/O error")
	assert.Equal(t, plain, MapDBError(plain, "El viaje", ""))
}

func TestTaxonomyWrapping(t *testing.T) {
	err := ValidationError("placa es un campo requerido.")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConflict)
}

func TestStartTransitionGuardsAvailability(t *testing.T) {
	db := newModelsTestDB(t)

	driver := User{Name: "Conductor", Email: "conductor1@flotilla.pe", Role: RoleDriver}
	require.NoError(t, db.Create(&driver).Error)
	vehicle := Vehicle{Plate: "ABC-901", ModelName: "Camion 5T", Capacity: 5000, State: VehicleAvailable}
	require.NoError(t, db.Create(&vehicle).Error)

	require.NoError(t, StartTransition(db, vehicle.ID, driver.ID))

	var updated Vehicle
	require.NoError(t, db.First(&updated, vehicle.ID).Error)
	assert.Equal(t, VehicleEnRoute, updated.State)

	// The vehicle is no longer DISPONIBLE, so a second start must lose.
	err := StartTransition(db, vehicle.ID, driver.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestEndTransitionFreesVehicle(t *testing.T) {
	db := newModelsTestDB(t)

	driver := User{Name: "Conductor", Email: "conductor1@flotilla.pe", Role: RoleDriver}
	require.NoError(t, db.Create(&driver).Error)
	vehicle := Vehicle{Plate: "ABC-902", ModelName: "Trailer", Capacity: 30000, State: VehicleAvailable, Odometer: 5000}
	require.NoError(t, db.Create(&vehicle).Error)
	require.NoError(t, StartTransition(db, vehicle.ID, driver.ID))

	final := 5480.0
	require.NoError(t, EndTransition(db, vehicle.ID, &final))

	var updated Vehicle
	require.NoError(t, db.First(&updated, vehicle.ID).Error)
	assert.Equal(t, VehicleAvailable, updated.State)
	assert.Equal(t, 5480.0, updated.Odometer)
	assert.Nil(t, updated.CurrentDriverID)
}

func newModelsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Connect("", dsn)
	require.NoError(t, err)
	return db
}
