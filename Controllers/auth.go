package Controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"Flotilla/Models"
	"Flotilla/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	DB              *gorm.DB
	Secret          string
	ExpirationHours int
}

func NewAuthHandler(db *gorm.DB, secret string, expirationHours int) *AuthHandler {
	return &AuthHandler{DB: db, Secret: secret, ExpirationHours: expirationHours}
}

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks the credentials and sets the JWT session cookie.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var payload loginPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	var user Models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(payload.Email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Credenciales incorrectas.",
		})
	}
	if err != nil {
		return respondError(c, err)
	}

	if bcrypt.CompareHashAndPassword(user.Password, []byte(payload.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Credenciales incorrectas.",
		})
	}

	expires := time.Now().Add(time.Duration(h.ExpirationHours) * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.Secret))
	if err != nil {
		return respondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    token,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{"data": user.Session()})
}

// Logout expires the session cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return c.JSON(fiber.Map{"data": "ok"})
}

// Me returns the authenticated session user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.SessionUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No ha iniciado sesión.",
		})
	}
	return c.JSON(fiber.Map{"data": user})
}
