package Controllers

import (
	"errors"
	"time"

	"Flotilla/Models"
	"Flotilla/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type TripHandler struct {
	DB *gorm.DB
}

func NewTripHandler(db *gorm.DB) *TripHandler {
	return &TripHandler{DB: db}
}

type startTripPayload struct {
	DriverID      uint     `json:"conductorId"`
	VehicleID     uint     `json:"vehiculoId" validate:"required"`
	Origin        string   `json:"origen" validate:"required"`
	Destination   string   `json:"destino" validate:"required"`
	StartOdometer *float64 `json:"kmInicial" validate:"required,gte=0"`
}

// Start opens a trip. The vehicle must be DISPONIBLE and the transition
// to EN_RUTA happens atomically with the trip insert, so two concurrent
// starts on the same vehicle cannot both succeed.
func (h *TripHandler) Start(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	var payload startTripPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	driverID := payload.DriverID
	if !session.IsAdmin() {
		// Drivers can only open trips for themselves.
		driverID = session.ID
	}
	if driverID == 0 {
		return respondError(c, Models.ValidationError("Debe indicar el conductor del viaje."))
	}

	var driver Models.User
	err := h.DB.Where("role = ?", Models.RoleDriver).First(&driver, driverID).Error
	if err != nil {
		return respondError(c, Models.MapDBError(err, "El conductor", ""))
	}

	var open int64
	h.DB.Model(&Models.Trip{}).Where("driver_id = ? AND end_time IS NULL", driverID).Count(&open)
	if open > 0 {
		return respondError(c, Models.ConflictError("El conductor ya tiene un viaje en curso."))
	}

	var trip Models.Trip
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var vehicle Models.Vehicle
		if err := tx.First(&vehicle, payload.VehicleID).Error; err != nil {
			return Models.MapDBError(err, "El vehículo", "")
		}

		if err := Models.StartTransition(tx, vehicle.ID, driverID); err != nil {
			return err
		}

		trip = Models.Trip{
			DriverID:      driverID,
			VehicleID:     vehicle.ID,
			Origin:        payload.Origin,
			Destination:   payload.Destination,
			StartTime:     time.Now(),
			StartOdometer: *payload.StartOdometer,
		}
		return tx.Create(&trip).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	if err := h.DB.Preload("Vehicle").Preload("Driver").First(&trip, trip.ID).Error; err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": trip})
}

type finishTripPayload struct {
	TripID      uint    `json:"id" validate:"required"`
	EndOdometer float64 `json:"kmFinal" validate:"required,gt=0"`
}

// Finish closes a trip with the final odometer reading. The reading
// must not be below the starting one, otherwise the trip stays open.
func (h *TripHandler) Finish(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	var payload finishTripPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	var trip Models.Trip
	if err := h.DB.First(&trip, payload.TripID).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El viaje", ""))
	}
	if !session.IsAdmin() && trip.DriverID != session.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No tiene permisos sobre este viaje.",
		})
	}
	if !trip.IsOpen() {
		return respondError(c, Models.ConflictError("El viaje ya fue finalizado."))
	}
	if payload.EndOdometer < trip.StartOdometer {
		return respondError(c, Models.ValidationError("El kilometraje final no puede ser menor al inicial."))
	}

	now := time.Now()
	distance := payload.EndOdometer - trip.StartOdometer
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"end_time":       now,
			"end_odometer":   payload.EndOdometer,
			"total_distance": distance,
		}
		result := tx.Model(&Models.Trip{}).
			Where("id = ? AND end_time IS NULL", trip.ID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return Models.ConflictError("El viaje ya fue finalizado.")
		}
		return Models.EndTransition(tx, trip.VehicleID, &payload.EndOdometer)
	})
	if err != nil {
		return respondError(c, err)
	}

	if err := h.DB.Preload("Vehicle").Preload("Driver").First(&trip, trip.ID).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": trip})
}

// QuickFinish closes a trip immediately without an odometer reading.
// The vehicle goes back to DISPONIBLE but its odometer is left as is.
func (h *TripHandler) QuickFinish(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	id, err := c.ParamsInt("viajeId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de viaje inválido."))
	}

	var trip Models.Trip
	if err := h.DB.First(&trip, id).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El viaje", ""))
	}
	if !session.IsAdmin() && trip.DriverID != session.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No tiene permisos sobre este viaje.",
		})
	}
	if !trip.IsOpen() {
		return respondError(c, Models.ConflictError("El viaje ya fue finalizado."))
	}

	now := time.Now()
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Models.Trip{}).
			Where("id = ? AND end_time IS NULL", trip.ID).
			Update("end_time", now)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return Models.ConflictError("El viaje ya fue finalizado.")
		}
		return Models.EndTransition(tx, trip.VehicleID, nil)
	})
	if err != nil {
		return respondError(c, err)
	}

	if err := h.DB.First(&trip, trip.ID).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": trip})
}

// List returns recent trips newest first, 10 by default. Drivers only
// see their own.
func (h *TripHandler) List(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	limit := c.QueryInt("limite", 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	query := h.DB.Preload("Vehicle").Preload("Driver").Preload("Expenses").
		Preload("Prediction").Order("start_time desc").Limit(limit)
	if !session.IsAdmin() {
		query = query.Where("driver_id = ?", session.ID)
	}

	var trips []Models.Trip
	if err := query.Find(&trips).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": trips})
}

// Get returns a trip with its expenses and prediction.
func (h *TripHandler) Get(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	id, err := c.ParamsInt("viajeId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de viaje inválido."))
	}

	var trip Models.Trip
	err = h.DB.Preload("Vehicle").Preload("Driver").Preload("Expenses").
		Preload("Prediction").First(&trip, id).Error
	if err != nil {
		return respondError(c, Models.MapDBError(err, "El viaje", ""))
	}
	if !session.IsAdmin() && trip.DriverID != session.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No tiene permisos sobre este viaje.",
		})
	}
	return c.JSON(fiber.Map{"data": trip})
}

// Active returns the caller's open trip, or null when there is none.
func (h *TripHandler) Active(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	var trip Models.Trip
	err := h.DB.Preload("Vehicle").Preload("Expenses").
		Where("driver_id = ? AND end_time IS NULL", session.ID).
		First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"data": nil})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": trip})
}
