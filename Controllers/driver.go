package Controllers

import (
	"strings"

	"Flotilla/Models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type DriverHandler struct {
	DB *gorm.DB
}

func NewDriverHandler(db *gorm.DB) *DriverHandler {
	return &DriverHandler{DB: db}
}

type createDriverPayload struct {
	Name     string `json:"nombre" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	DNI      string `json:"dni" validate:"required"`
	License  string `json:"brevete" validate:"required"`
}

// Create registers a driver account. The email must be unique.
func (h *DriverHandler) Create(c *fiber.Ctx) error {
	var payload createDriverPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, err)
	}

	driver := Models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    strings.ToLower(strings.TrimSpace(payload.Email)),
		Password: hash,
		Role:     Models.RoleDriver,
		DNI:      strings.TrimSpace(payload.DNI),
		License:  strings.TrimSpace(payload.License),
	}
	if err := h.DB.Create(&driver).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El conductor", "El correo ya está registrado."))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": driverView(driver)})
}

// List returns every registered driver.
func (h *DriverHandler) List(c *fiber.Ctx) error {
	var drivers []Models.User
	if err := h.DB.Where("role = ?", Models.RoleDriver).Order("name asc").Find(&drivers).Error; err != nil {
		return respondError(c, err)
	}

	views := make([]fiber.Map, 0, len(drivers))
	for _, d := range drivers {
		views = append(views, driverView(d))
	}
	return c.JSON(fiber.Map{"data": views})
}

func driverView(d Models.User) fiber.Map {
	return fiber.Map{
		"id":      d.ID,
		"nombre":  d.Name,
		"email":   d.Email,
		"rol":     d.Role,
		"dni":     d.DNI,
		"brevete": d.License,
	}
}
