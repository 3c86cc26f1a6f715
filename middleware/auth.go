package middleware

import (
	"Flotilla/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Auth verifies the JWT cookie issued at login and places a typed
// Models.SessionUser in the request locals under "user".
type Auth struct {
	DB     *gorm.DB
	Secret string
}

func NewAuth(db *gorm.DB, secret string) *Auth {
	return &Auth{DB: db, Secret: secret}
}

// SessionUser pulls the typed principal out of the request. Only valid after
// Verify has run.
func SessionUser(c *fiber.Ctx) (Models.SessionUser, bool) {
	user, ok := c.Locals("user").(Models.SessionUser)
	return user, ok
}

// Verify rejects requests without a valid token and, when requiredRole is
// non-empty, requests from users of any other role.
func (a *Auth) Verify(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies("jwt")
		if cookie == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No ha iniciado sesión.",
			})
		}

		token, err := jwt.ParseWithClaims(cookie, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(a.Secret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Sesión inválida o expirada.",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Sesión inválida o expirada.",
			})
		}

		var user Models.User
		if err := a.DB.Where("id = ?", claims.Subject).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Usuario no encontrado.",
			})
		}

		c.Locals("user", user.Session())

		if requiredRole != "" && user.Role != requiredRole {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "No tiene permisos para acceder a este recurso.",
			})
		}
		return c.Next()
	}
}
