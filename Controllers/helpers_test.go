package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"Flotilla/FiberConfig"
	"Flotilla/Models"
	"Flotilla/Notifications"
	"Flotilla/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	return newTestAppWithAI(t, "http://127.0.0.1:1")
}

func newTestAppWithAI(t *testing.T, aiBaseURL string) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := Models.Connect("", dsn)
	require.NoError(t, err)

	cfg := config.Config{
		JWT:     config.JWTConfig{Secret: testSecret, ExpirationHours: 1},
		AI:      config.AIConfig{BaseURL: aiBaseURL},
		Uploads: config.UploadConfig{Dir: t.TempDir()},
	}

	app := fiber.New()
	FiberConfig.SetupRoutes(app, db, cfg, Notifications.NewNotifier(db, nil))
	return app, db
}

func createUser(t *testing.T, db *gorm.DB, role, email string) Models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("Conductor123!"), bcrypt.MinCost)
	require.NoError(t, err)

	user := Models.User{
		Name:     "Usuario " + email,
		Email:    email,
		Password: hash,
		Role:     role,
		DNI:      "12345678",
		License:  "Q1234567",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createVehicle(t *testing.T, db *gorm.DB, plate string, odometer float64) Models.Vehicle {
	t.Helper()

	vehicle := Models.Vehicle{
		Plate:     plate,
		ModelName: "Camion 5T",
		Capacity:  5000,
		Odometer:  odometer,
		State:     Models.VehicleAvailable,
	}
	require.NoError(t, db.Create(&vehicle).Error)
	return vehicle
}

func sessionCookie(t *testing.T, user Models.User) *http.Cookie {
	t.Helper()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: "jwt", Value: token}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, cookie *http.Cookie) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}
