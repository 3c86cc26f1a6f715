package Controllers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"Flotilla/Models"
	"Flotilla/middleware"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewExpenseHandler(db *gorm.DB, uploadDir string) *ExpenseHandler {
	return &ExpenseHandler{DB: db, UploadDir: uploadDir}
}

type createExpensePayload struct {
	TripID      uint     `json:"viajeId"`
	VehicleID   uint     `json:"vehiculoId" validate:"required"`
	Type        string   `json:"tipo" validate:"required"`
	Amount      float64  `json:"monto" validate:"required,gt=0"`
	Gallons     *float64 `json:"galones"`
	Description string   `json:"descripcion"`
	ReceiptURL  string   `json:"imagenUrl"`
}

// Create records an expense against an open trip. The vehicle is always
// required; when no trip id is given its most recently started open trip
// is the target. Expenses never touch vehicle or trip state.
func (h *ExpenseHandler) Create(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	var payload createExpensePayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}
	if !Models.ValidExpenseType(payload.Type) {
		return respondError(c, Models.ValidationError("Tipo de gasto inválido."))
	}
	if payload.Gallons != nil && *payload.Gallons <= 0 {
		return respondError(c, Models.ValidationError("Los galones deben ser mayores a cero."))
	}

	trip, err := h.resolveTrip(payload.TripID, payload.VehicleID)
	if err != nil {
		return respondError(c, err)
	}
	if !session.IsAdmin() && trip.DriverID != session.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "No tiene permisos sobre este viaje.",
		})
	}

	expense := Models.Expense{
		TripID:      trip.ID,
		Type:        payload.Type,
		Amount:      payload.Amount,
		Gallons:     payload.Gallons,
		Description: strings.TrimSpace(payload.Description),
		ReceiptURL:  payload.ReceiptURL,
		Date:        time.Now(),
	}
	if err := h.DB.Create(&expense).Error; err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": expense})
}

func (h *ExpenseHandler) resolveTrip(tripID, vehicleID uint) (*Models.Trip, error) {
	var trip Models.Trip
	if tripID != 0 {
		if err := h.DB.First(&trip, tripID).Error; err != nil {
			return nil, Models.MapDBError(err, "El viaje", "")
		}
		return &trip, nil
	}

	err := h.DB.Where("vehicle_id = ? AND end_time IS NULL", vehicleID).
		Order("start_time desc").
		First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.ValidationError("El vehículo no tiene un viaje en curso.")
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// ListByTrip returns the expenses of a trip, oldest first.
func (h *ExpenseHandler) ListByTrip(c *fiber.Ctx) error {
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

	var expenses []Models.Expense
	if err := h.DB.Where("trip_id = ?", trip.ID).Order("date asc").Find(&expenses).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": expenses})
}

// UploadReceipt stores a receipt photo, downscaled to keep uploads
// small, and returns its public URL.
func (h *ExpenseHandler) UploadReceipt(c *fiber.Ctx) error {
	file, err := c.FormFile("imagen")
	if err != nil {
		return respondError(c, Models.ValidationError("Debe adjuntar la imagen del comprobante."))
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return respondError(c, err)
	}

	tmpPath := filepath.Join(h.UploadDir, fmt.Sprintf("tmp-%s", uuid.New().String()))
	if err := c.SaveFile(file, tmpPath); err != nil {
		return respondError(c, err)
	}
	defer os.Remove(tmpPath)

	img, err := imaging.Open(tmpPath, imaging.AutoOrientation(true))
	if err != nil {
		return respondError(c, Models.ValidationError("El archivo no es una imagen válida."))
	}
	if img.Bounds().Dx() > 1280 {
		img = imaging.Resize(img, 1280, 0, imaging.Lanczos)
	}

	name := fmt.Sprintf("%s.jpg", uuid.New().String())
	if err := imaging.Save(img, filepath.Join(h.UploadDir, name), imaging.JPEGQuality(80)); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"url": "/uploads/" + name},
	})
}
