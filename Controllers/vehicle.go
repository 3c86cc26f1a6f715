package Controllers

import (
	"fmt"
	"strings"
	"time"

	"Flotilla/Models"
	"Flotilla/Notifications"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VehicleHandler struct {
	DB *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{DB: db}
}

type documentPayload struct {
	Number     string `json:"numero" validate:"required"`
	ValidFrom  string `json:"fechaVigencia" validate:"required"`
	ExpiryDate string `json:"fechaCaducidad" validate:"required"`
}

type createVehiclePayload struct {
	Plate       string           `json:"placa" validate:"required"`
	ModelName   string           `json:"modelo" validate:"required"`
	Capacity    float64          `json:"capacidad" validate:"required,gt=0"`
	Odometer    float64          `json:"kilometraje" validate:"gte=0"`
	State       string           `json:"estado" validate:"omitempty,oneof=DISPONIBLE MANTENIMIENTO"`
	DriverID    *uint            `json:"conductorId"`
	Soat        *documentPayload `json:"soat"`
	Certificate *documentPayload `json:"certificado"`
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Models.ValidationError(fmt.Sprintf("Fecha inválida: %s", value))
}

// Create registers a vehicle, optionally with its SOAT and circulation
// certificate. The plate is normalized and must be unique.
func (h *VehicleHandler) Create(c *fiber.Ctx) error {
	var payload createVehiclePayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	state := payload.State
	if state == "" {
		state = Models.VehicleAvailable
	}
	if payload.DriverID != nil {
		var driver Models.User
		err := h.DB.Where("role = ?", Models.RoleDriver).First(&driver, *payload.DriverID).Error
		if err != nil {
			return respondError(c, Models.MapDBError(err, "El conductor", ""))
		}
	}

	vehicle := Models.Vehicle{
		Plate:           strings.ToUpper(strings.TrimSpace(payload.Plate)),
		ModelName:       strings.TrimSpace(payload.ModelName),
		Capacity:        payload.Capacity,
		Odometer:        payload.Odometer,
		State:           state,
		CurrentDriverID: payload.DriverID,
	}

	if payload.Soat != nil {
		doc, err := buildDocumentDates(payload.Soat)
		if err != nil {
			return respondError(c, err)
		}
		vehicle.Soat = &Models.Soat{
			Number:     payload.Soat.Number,
			ValidFrom:  doc[0],
			ExpiryDate: doc[1],
		}
	}
	if payload.Certificate != nil {
		doc, err := buildDocumentDates(payload.Certificate)
		if err != nil {
			return respondError(c, err)
		}
		vehicle.Certificate = &Models.CirculationCertificate{
			Number:     payload.Certificate.Number,
			ValidFrom:  doc[0],
			ExpiryDate: doc[1],
		}
	}

	if err := h.DB.Create(&vehicle).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El vehículo", "La placa ya está registrada."))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": vehicle})
}

func buildDocumentDates(doc *documentPayload) ([2]time.Time, error) {
	var dates [2]time.Time
	from, err := parseDate(doc.ValidFrom)
	if err != nil {
		return dates, err
	}
	until, err := parseDate(doc.ExpiryDate)
	if err != nil {
		return dates, err
	}
	if !until.After(from) {
		return dates, Models.ValidationError("La fecha de caducidad debe ser posterior a la fecha de vigencia.")
	}
	dates[0], dates[1] = from, until
	return dates, nil
}

// List returns the fleet with documents and the assigned driver preloaded.
func (h *VehicleHandler) List(c *fiber.Ctx) error {
	var vehicles []Models.Vehicle
	query := h.DB.Preload("Soat").Preload("CurrentDriver").Preload("Certificate").Order("plate asc")
	if state := c.Query("estado"); state != "" {
		query = query.Where("state = ?", state)
	}
	if err := query.Find(&vehicles).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": vehicles})
}

// Get returns a single vehicle by id.
func (h *VehicleHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("vehiculoId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de vehículo inválido."))
	}

	var vehicle Models.Vehicle
	err = h.DB.Preload("Soat").Preload("Certificate").Preload("CurrentDriver").First(&vehicle, id).Error
	if err != nil {
		return respondError(c, Models.MapDBError(err, "El vehículo", ""))
	}
	return c.JSON(fiber.Map{"data": vehicle})
}

type assignDriverPayload struct {
	DriverID uint `json:"conductorId" validate:"required"`
}

// AssignDriver sets the driver assigned to a vehicle. The target must be
// a CONDUCTOR user and the vehicle must not be on an open trip.
func (h *VehicleHandler) AssignDriver(c *fiber.Ctx) error {
	id, err := c.ParamsInt("vehiculoId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de vehículo inválido."))
	}

	var payload assignDriverPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	var vehicle Models.Vehicle
	if err := h.DB.First(&vehicle, id).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El vehículo", ""))
	}
	if vehicle.State == Models.VehicleEnRoute {
		return respondError(c, Models.ConflictError("El vehículo está en ruta, no se puede reasignar."))
	}

	var driver Models.User
	if err := h.DB.Where("role = ?", Models.RoleDriver).First(&driver, payload.DriverID).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El conductor", ""))
	}

	if err := h.DB.Model(&vehicle).Update("current_driver_id", driver.ID).Error; err != nil {
		return respondError(c, err)
	}

	if err := h.DB.Preload("CurrentDriver").First(&vehicle, id).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": vehicle})
}

type updateStatePayload struct {
	State string `json:"estado" validate:"required,oneof=DISPONIBLE MANTENIMIENTO"`
}

// UpdateState moves a vehicle between DISPONIBLE and MANTENIMIENTO. The
// EN_RUTA state is owned by the trip lifecycle and cannot be set here.
func (h *VehicleHandler) UpdateState(c *fiber.Ctx) error {
	id, err := c.ParamsInt("vehiculoId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de vehículo inválido."))
	}

	var payload updateStatePayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	result := h.DB.Model(&Models.Vehicle{}).
		Where("id = ? AND state <> ?", id, Models.VehicleEnRoute).
		Update("state", payload.State)
	if result.Error != nil {
		return respondError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		h.DB.Model(&Models.Vehicle{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return respondError(c, Models.NotFoundError("El vehículo"))
		}
		return respondError(c, Models.ConflictError("El vehículo está en ruta."))
	}

	var vehicle Models.Vehicle
	if err := h.DB.First(&vehicle, id).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": vehicle})
}

// Documents lists every vehicle document with a human readable expiry
// status for the fleet documents screen.
func (h *VehicleHandler) Documents(c *fiber.Ctx) error {
	var vehicles []Models.Vehicle
	err := h.DB.Preload("Soat").Preload("Certificate").Order("plate asc").Find(&vehicles).Error
	if err != nil {
		return respondError(c, err)
	}

	today := time.Now().Truncate(24 * time.Hour)
	docs := make([]fiber.Map, 0, len(vehicles)*2)
	for _, v := range vehicles {
		if v.Soat != nil {
			docs = append(docs, documentView(v, "SOAT", v.Soat.Number, v.Soat.ExpiryDate, today))
		}
		if v.Certificate != nil {
			docs = append(docs, documentView(v, "Certificado de Circulación", v.Certificate.Number, v.Certificate.ExpiryDate, today))
		}
	}
	return c.JSON(fiber.Map{"data": docs})
}

func documentView(v Models.Vehicle, kind, number string, expiry, today time.Time) fiber.Map {
	daysLeft := Notifications.DaysUntil(expiry, today)
	var status string
	switch {
	case daysLeft == 0:
		status = "Vence hoy"
	case daysLeft > 0:
		status = fmt.Sprintf("Vence en %d días", daysLeft)
	default:
		status = fmt.Sprintf("Venció hace %d días", -daysLeft)
	}
	return fiber.Map{
		"vehiculoId":     v.ID,
		"placa":          v.Plate,
		"tipo":           kind,
		"numero":         number,
		"fechaCaducidad": expiry,
		"diasRestantes":  daysLeft,
		"estado":         status,
	}
}
