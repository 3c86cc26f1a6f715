package Models

import (
	"time"

	"gorm.io/gorm"
)

// Trip is owned by a driver and a vehicle. A nil EndTime means the trip is
// open; the owning vehicle must then be EN_RUTA. Rows are written once at
// start and once at finalization, then never touched again.
type Trip struct {
	gorm.Model
	DriverID  uint `json:"conductorId" gorm:"index;not null"`
	VehicleID uint `json:"vehiculoId" gorm:"index;not null"`

	Origin      string `json:"origen" gorm:"not null"`
	Destination string `json:"destino" gorm:"not null"`

	StartTime time.Time  `json:"fechaInicio" gorm:"index;not null"`
	EndTime   *time.Time `json:"fechaFin" gorm:"index"`

	StartOdometer float64  `json:"kmInicial"`
	EndOdometer   *float64 `json:"kmFinal"`
	TotalDistance *float64 `json:"distanciaTotal"`

	Driver     User        `json:"conductor,omitempty" gorm:"foreignKey:DriverID"`
	Vehicle    Vehicle     `json:"vehiculo,omitempty" gorm:"foreignKey:VehicleID"`
	Expenses   []Expense   `json:"gastos,omitempty" gorm:"foreignKey:TripID;constraint:OnDelete:CASCADE"`
	Prediction *Prediction `json:"prediccion,omitempty" gorm:"foreignKey:TripID"`
}

func (t *Trip) IsOpen() bool {
	return t.EndTime == nil
}

func (Trip) TableName() string {
	return "trips"
}
