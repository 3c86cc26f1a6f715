package Controllers

import (
	"time"

	"Flotilla/AI"
	"Flotilla/Models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB *gorm.DB
	AI *AI.Client
}

func NewDashboardHandler(db *gorm.DB, ai *AI.Client) *DashboardHandler {
	return &DashboardHandler{DB: db, AI: ai}
}

// Metrics returns the headline fleet numbers for the admin dashboard.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	var totalVehicles, availableVehicles, enRouteVehicles int64
	h.DB.Model(&Models.Vehicle{}).Count(&totalVehicles)
	h.DB.Model(&Models.Vehicle{}).Where("state = ?", Models.VehicleAvailable).Count(&availableVehicles)
	h.DB.Model(&Models.Vehicle{}).Where("state = ?", Models.VehicleEnRoute).Count(&enRouteVehicles)

	var totalDrivers, openTrips int64
	h.DB.Model(&Models.User{}).Where("role = ?", Models.RoleDriver).Count(&totalDrivers)
	h.DB.Model(&Models.Trip{}).Where("end_time IS NULL").Count(&openTrips)

	monthStart := time.Now().AddDate(0, -1, 0)
	var monthExpenses float64
	h.DB.Model(&Models.Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("date >= ?", monthStart).
		Scan(&monthExpenses)

	var monthDistance float64
	h.DB.Model(&Models.Trip{}).
		Select("COALESCE(SUM(total_distance), 0)").
		Where("end_time >= ?", monthStart).
		Scan(&monthDistance)

	return c.JSON(fiber.Map{"data": fiber.Map{
		"vehiculosTotales":     totalVehicles,
		"vehiculosDisponibles": availableVehicles,
		"vehiculosEnRuta":      enRouteVehicles,
		"conductoresTotales":   totalDrivers,
		"viajesEnCurso":        openTrips,
		"gastosUltimoMes":      monthExpenses,
		"distanciaUltimoMes":   monthDistance,
	}})
}

// Costs compares predicted against actual trip cost per day over the
// last 30 days.
func (h *DashboardHandler) Costs(c *fiber.Ctx) error {
	since := time.Now().AddDate(0, 0, -30)

	var trips []Models.Trip
	err := h.DB.Preload("Expenses").Preload("Prediction").
		Where("end_time IS NOT NULL AND end_time >= ?", since).
		Order("end_time asc").
		Find(&trips).Error
	if err != nil {
		return respondError(c, err)
	}

	type bucket struct {
		estimated float64
		actual    float64
	}
	days := map[string]*bucket{}
	order := []string{}
	for _, trip := range trips {
		day := trip.EndTime.Format("01-02")
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
			order = append(order, day)
		}
		if trip.Prediction != nil {
			b.estimated += trip.Prediction.EstimatedCost
		}
		for _, expense := range trip.Expenses {
			b.actual += expense.Amount
		}
	}

	points := make([]fiber.Map, 0, len(order))
	for _, day := range order {
		points = append(points, fiber.Map{
			"dia":           day,
			"costoEstimado": days[day].estimated,
			"costoReal":     days[day].actual,
		})
	}
	return c.JSON(fiber.Map{"data": points})
}

// Efficiency ranks the ten drivers with the most distance covered,
// alongside their fuel consumption.
func (h *DashboardHandler) Efficiency(c *fiber.Ctx) error {
	type row struct {
		DriverID uint
		Name     string
		Distance float64
		Gallons  float64
	}
	var rows []row
	err := h.DB.Model(&Models.Trip{}).
		Select("trips.driver_id AS driver_id, users.name AS name, "+
			"COALESCE(SUM(trips.total_distance), 0) AS distance, "+
			"COALESCE(SUM(CASE WHEN expenses.type = ? THEN expenses.gallons ELSE 0 END), 0) AS gallons",
			Models.ExpenseFuel).
		Joins("JOIN users ON users.id = trips.driver_id").
		Joins("LEFT JOIN expenses ON expenses.trip_id = trips.id AND expenses.deleted_at IS NULL").
		Where("trips.end_time IS NOT NULL").
		Group("trips.driver_id, users.name").
		Order("distance desc").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		return respondError(c, err)
	}

	views := make([]fiber.Map, 0, len(rows))
	for _, r := range rows {
		var perGallon float64
		if r.Gallons > 0 {
			perGallon = r.Distance / r.Gallons
		}
		views = append(views, fiber.Map{
			"conductorId": r.DriverID,
			"nombre":      r.Name,
			"distancia":   r.Distance,
			"galones":     r.Gallons,
			"kmPorGalon":  perGallon,
		})
	}
	return c.JSON(fiber.Map{"data": views})
}

// Anomalies returns the anomaly trend of the last 30 days plus the five
// most recent anomalous trips.
func (h *DashboardHandler) Anomalies(c *fiber.Ctx) error {
	since := time.Now().AddDate(0, 0, -30)

	var predictions []Models.Prediction
	err := h.DB.Preload("Trip").Preload("Trip.Vehicle").Preload("Trip.Driver").
		Where("predicted_at >= ?", since).
		Order("predicted_at asc").
		Find(&predictions).Error
	if err != nil {
		return respondError(c, err)
	}

	type bucket struct {
		total     int
		anomalies int
	}
	days := map[string]*bucket{}
	order := []string{}
	for _, p := range predictions {
		day := p.PredictedAt.Format("01-02")
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
			order = append(order, day)
		}
		b.total++
		if p.IsAnomaly {
			b.anomalies++
		}
	}

	trend := make([]fiber.Map, 0, len(order))
	for _, day := range order {
		trend = append(trend, fiber.Map{
			"dia":       day,
			"total":     days[day].total,
			"anomalias": days[day].anomalies,
		})
	}

	var latest []Models.Prediction
	err = h.DB.Preload("Trip").Preload("Trip.Vehicle").Preload("Trip.Driver").
		Where("is_anomaly = ?", true).
		Order("predicted_at desc").
		Limit(5).
		Find(&latest).Error
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"tendencia": trend,
		"recientes": latest,
	}})
}

type simulatePayload struct {
	DistanceKm     float64 `json:"distancia_km" validate:"required,gt=0"`
	VehicleType    int     `json:"tipo_vehiculo" validate:"required"`
	EstimatedTolls float64 `json:"peajes_estimados" validate:"gte=0"`
}

// Simulate forwards a what-if cost question to the prediction service
// without persisting anything.
func (h *DashboardHandler) Simulate(c *fiber.Ctx) error {
	var payload simulatePayload
	if err := c.BodyParser(&payload); err != nil {
		return respondError(c, Models.ValidationError("Cuerpo de la petición inválido."))
	}
	if err := validatePayload(payload); err != nil {
		return respondError(c, err)
	}

	out, _ := h.AI.PredictCost(AI.PredictCostInput{
		DistanceKm:     payload.DistanceKm,
		VehicleType:    payload.VehicleType,
		EstimatedTolls: payload.EstimatedTolls,
	})
	if out == nil {
		return respondError(c, Models.UnavailableError("El servicio de predicción no está disponible."))
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"costoEstimado": out.EstimatedCost}})
}

// vehicleTypeCode maps a vehicle model to the numeric category the
// prediction service was trained on. Unknown models fall back to 1.
func vehicleTypeCode(modelName string) int {
	codes := map[string]int{
		"Camion 5T":  1,
		"Camion 10T": 2,
		"Furgoneta":  3,
		"Trailer":    4,
	}
	if code, ok := codes[modelName]; ok {
		return code
	}
	return 1
}

// Predict runs the cost prediction and anomaly detection for a closed
// trip and stores the result. Re-running replaces the stored prediction.
func (h *DashboardHandler) Predict(c *fiber.Ctx) error {
	id, err := c.ParamsInt("viajeId")
	if err != nil || id <= 0 {
		return respondError(c, Models.ValidationError("Identificador de viaje inválido."))
	}

	var trip Models.Trip
	err = h.DB.Preload("Vehicle").Preload("Expenses").First(&trip, id).Error
	if err != nil {
		return respondError(c, Models.MapDBError(err, "El viaje", ""))
	}
	if trip.IsOpen() || trip.TotalDistance == nil {
		return respondError(c, Models.ConflictError("El viaje debe estar finalizado con kilometraje para predecir su costo."))
	}

	var tolls, actual float64
	for _, expense := range trip.Expenses {
		actual += expense.Amount
		if expense.Type == Models.ExpenseToll {
			tolls += expense.Amount
		}
	}

	predicted, raw := h.AI.PredictCost(AI.PredictCostInput{
		DistanceKm:     *trip.TotalDistance,
		VehicleType:    vehicleTypeCode(trip.Vehicle.ModelName),
		EstimatedTolls: tolls,
	})
	if predicted == nil {
		return respondError(c, Models.UnavailableError("El servicio de predicción no está disponible."))
	}

	isAnomaly := false
	if anomaly, _ := h.AI.DetectAnomaly(AI.DetectAnomalyInput{
		ActualCost:    actual,
		EstimatedCost: predicted.EstimatedCost,
		DistanceKm:    *trip.TotalDistance,
	}); anomaly != nil {
		isAnomaly = anomaly.IsAnomaly
	}

	prediction := Models.Prediction{
		TripID:        trip.ID,
		EstimatedCost: predicted.EstimatedCost,
		IsAnomaly:     isAnomaly,
		PredictedAt:   time.Now(),
		RawResponse:   datatypes.JSON(raw),
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("trip_id = ?", trip.ID).Delete(&Models.Prediction{}).Error; err != nil {
			return err
		}
		return tx.Create(&prediction).Error
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": prediction})
}
