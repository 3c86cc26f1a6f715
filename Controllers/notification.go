package Controllers

import (
	"Flotilla/Models"
	"Flotilla/Notifications"
	"Flotilla/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	DB       *gorm.DB
	Notifier *Notifications.Notifier
}

func NewNotificationHandler(db *gorm.DB, notifier *Notifications.Notifier) *NotificationHandler {
	return &NotificationHandler{DB: db, Notifier: notifier}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	query := h.DB.Where("user_id = ?", session.ID).Order("date desc")
	if c.Query("noLeidas") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []Models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": notifications})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	id, err := c.ParamsInt("notificacionId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de notificación inválido."))
	}

	result := h.DB.Model(&Models.Notification{}).
		Where("id = ? AND user_id = ?", id, session.ID).
		Update("read", true)
	if result.Error != nil {
		return respondError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return respondError(c, Models.NotFoundError("La notificación"))
	}
	return c.JSON(fiber.Map{"data": "ok"})
}

type createNotificationPayload struct {
	UserID  uint   `json:"usuarioId" validate:"required"`
	Message string `json:"mensaje" validate:"required"`
}

// Create lets an administrator send a notification to any user.
func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var payload createNotificationPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	var user Models.User
	if err := h.DB.First(&user, payload.UserID).Error; err != nil {
		return respondError(c, Models.MapDBError(err, "El usuario", ""))
	}

	if err := h.Notifier.Create(user.ID, payload.Message); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": "ok"})
}

// CheckDocuments runs the document expiry check on demand.
func (h *NotificationHandler) CheckDocuments(c *fiber.Ctx) error {
	created, err := h.Notifier.CheckExpiringDocuments()
	if err != nil {
		return respondError(c, err)
	}
	logrus.WithField("created", created).Info("verificación de documentos ejecutada manualmente")
	return c.JSON(fiber.Map{"data": fiber.Map{"notificacionesCreadas": created}})
}

type fcmTokenPayload struct {
	Token string `json:"token" validate:"required"`
}

// RegisterFCMToken stores a device token for push delivery. Repeated
// registrations of the same token are harmless.
func (h *NotificationHandler) RegisterFCMToken(c *fiber.Ctx) error {
	session, _ := middleware.SessionUser(c)

	var payload fcmTokenPayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	token := Models.FCMToken{UserID: session.ID, Value: payload.Token}
	err := h.DB.Where("value = ?", payload.Token).FirstOrCreate(&token).Error
	if err != nil {
		return respondError(c, err)
	}
	if token.UserID != session.ID {
		// The device changed hands; move the token to its new owner.
		if err := h.DB.Model(&token).Update("user_id", session.ID).Error; err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(fiber.Map{"data": "ok"})
}
