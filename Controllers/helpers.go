package Controllers

import (
	"errors"
	"reflect"
	"strings"

	"Flotilla/Models"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	esLocale := es.New()
	uni := ut.New(esLocale, esLocale)
	trans, _ = uni.GetTranslator("es")
	_ = es_translations.RegisterDefaultTranslations(validate, trans)

	// Report fields by their wire name, not the Go identifier.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// validatePayload runs struct validation and folds every failure into one
// joined, user-readable Spanish message.
func validatePayload(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Models.ValidationError("Datos inválidos.")
	}
	messages := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		messages = append(messages, ve.Translate(trans)+".")
	}
	return Models.ValidationError(strings.Join(messages, " "))
}

// respondError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is an internal failure: logged with context, reported
// generically.
func respondError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, Models.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, Models.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, Models.ErrConflict):
		status = fiber.StatusConflict
	case errors.Is(err, Models.ErrUnavailable):
		status = fiber.StatusServiceUnavailable
	default:
		log.WithFields(log.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Errorf("internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error interno del servidor.",
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": taxonomyDetail(err)})
}

// taxonomyDetail strips the sentinel prefix so the client sees only the
// user-facing portion of a wrapped taxonomy error.
func taxonomyDetail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{Models.ErrValidation, Models.ErrNotFound, Models.ErrConflict, Models.ErrUnavailable} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
