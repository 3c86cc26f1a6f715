package Models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle availability states. MANTENIMIENTO is only ever set by a direct
// administrative edit; trip events move a vehicle between the other two.
const (
	VehicleAvailable   = "DISPONIBLE"
	VehicleEnRoute     = "EN_RUTA"
	VehicleMaintenance = "MANTENIMIENTO"
)

var VehicleStates = []string{VehicleAvailable, VehicleEnRoute, VehicleMaintenance}

type Vehicle struct {
	gorm.Model
	Plate     string  `json:"placa" gorm:"uniqueIndex;size:16;not null"`
	ModelName string  `json:"modelo" gorm:"column:model_name;not null"`
	Capacity  float64 `json:"capacidad" gorm:"not null"`
	Odometer  float64 `json:"kilometraje"`
	State     string  `json:"estado" gorm:"size:16;not null;default:DISPONIBLE"`

	Latitude  *float64 `json:"latitud,omitempty"`
	Longitude *float64 `json:"longitud,omitempty"`

	// Weak reference: set on trip start, cleared on trip end.
	CurrentDriverID *uint `json:"conductorActualId" gorm:"index"`
	CurrentDriver   *User `json:"conductorActual,omitempty" gorm:"foreignKey:CurrentDriverID"`

	Soat        *Soat                   `json:"soat,omitempty" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	Certificate *CirculationCertificate `json:"certificado,omitempty" gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
}

// Soat is the mandatory liability-insurance document, owned 1:1 by a vehicle.
type Soat struct {
	gorm.Model
	VehicleID  uint      `json:"vehiculoId" gorm:"uniqueIndex;not null"`
	Number     string    `json:"numero" gorm:"size:32;not null"`
	ValidFrom  time.Time `json:"fechaVigencia"`
	ExpiryDate time.Time `json:"fechaCaducidad" gorm:"index"`
}

// CirculationCertificate is the roadworthiness document, owned 1:1 by a vehicle.
type CirculationCertificate struct {
	gorm.Model
	VehicleID  uint      `json:"vehiculoId" gorm:"uniqueIndex;not null"`
	Number     string    `json:"numero" gorm:"size:32;not null"`
	ValidFrom  time.Time `json:"fechaVigencia"`
	ExpiryDate time.Time `json:"fechaCaducidad" gorm:"index"`
}

// StartTransition marks the vehicle EN_RUTA and pins the starting driver.
// The estado guard runs inside the UPDATE itself, so two racing trip starts
// cannot both pass: the loser sees zero rows and gets Conflict.
func StartTransition(tx *gorm.DB, vehicleID, driverID uint) error {
	res := tx.Model(&Vehicle{}).
		Where("id = ? AND state = ?", vehicleID, VehicleAvailable).
		Updates(map[string]interface{}{
			"state":             VehicleEnRoute,
			"current_driver_id": driverID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ConflictError("El vehículo no está disponible.")
	}
	return nil
}

// EndTransition frees the vehicle, advances the odometer to the trip's final
// reading when one is known, and clears the current driver.
func EndTransition(tx *gorm.DB, vehicleID uint, finalOdometer *float64) error {
	updates := map[string]interface{}{
		"state":             VehicleAvailable,
		"current_driver_id": nil,
	}
	if finalOdometer != nil {
		updates["odometer"] = *finalOdometer
	}
	return tx.Model(&Vehicle{}).Where("id = ?", vehicleID).Updates(updates).Error
}
