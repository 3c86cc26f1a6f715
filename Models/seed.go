package Models

import (
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedDriverNames = []string{
	"Carlos Huamán", "María Quispe", "Jorge Ramírez", "Lucía Torres", "Pedro Chávez",
}

var seedVehicleModels = []string{"Camion 5T", "Camion 10T", "Furgoneta", "Trailer"}

var seedCities = []string{"Lima", "Arequipa", "Trujillo", "Cusco", "Piura", "Huancayo", "Ica"}

// Seed wipes and repopulates the database with demo data: one admin, five
// drivers, five documented vehicles and fifty closed trips with expenses and
// predictions. Destructive; only ever run behind the -seed flag.
func Seed(db *gorm.DB) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, m := range []interface{}{
		&Expense{}, &Prediction{}, &Trip{}, &Soat{}, &CirculationCertificate{},
		&Vehicle{}, &Notification{}, &FCMToken{}, &User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			return err
		}
	}

	password, err := bcrypt.GenerateFromPassword([]byte("Conductor123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := User{Name: "Administrador General", Email: "admin@flotilla.pe", Password: password, Role: RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Infof("seed: created admin %s", admin.Email)

	var drivers []User
	for i, name := range seedDriverNames {
		driver := User{
			Name:     name,
			Email:    fmt.Sprintf("conductor%d@flotilla.pe", i+1),
			Password: password,
			Role:     RoleDriver,
			DNI:      fmt.Sprintf("%08d", rng.Intn(100000000)),
			License:  fmt.Sprintf("Q%08d", rng.Intn(100000000)),
		}
		if err := db.Create(&driver).Error; err != nil {
			return err
		}
		drivers = append(drivers, driver)
	}

	now := time.Now()
	var vehicles []Vehicle
	for i := 0; i < 5; i++ {
		// Stagger document expiries so the notifier has something to report.
		soatExpiry := now.AddDate(0, 0, 30*(i+1))
		if i == 0 {
			soatExpiry = now.AddDate(0, 0, 3)
		}
		certExpiry := now.AddDate(0, 0, 45*(i+1))
		if i == 1 {
			certExpiry = now.AddDate(0, 0, -5)
		}

		lat := -12.0 - rng.Float64()*0.2
		lng := -77.0 - rng.Float64()*0.2
		driverID := drivers[i%len(drivers)].ID

		vehicle := Vehicle{
			Plate:           fmt.Sprintf("ABC-%03d", 100+i),
			ModelName:       seedVehicleModels[i%len(seedVehicleModels)],
			Capacity:        5 + rng.Float64()*25,
			Odometer:        10000 + rng.Float64()*110000,
			State:           VehicleAvailable,
			Latitude:        &lat,
			Longitude:       &lng,
			CurrentDriverID: &driverID,
			Soat: &Soat{
				Number:     fmt.Sprintf("%010d", rng.Intn(1000000000)),
				ValidFrom:  soatExpiry.AddDate(-1, 0, 0),
				ExpiryDate: soatExpiry,
			},
			Certificate: &CirculationCertificate{
				Number:     fmt.Sprintf("%010d", rng.Intn(1000000000)),
				ValidFrom:  certExpiry.AddDate(-1, 0, 0),
				ExpiryDate: certExpiry,
			},
		}
		if err := db.Create(&vehicle).Error; err != nil {
			return err
		}
		vehicles = append(vehicles, vehicle)
		log.Infof("seed: created vehicle %s", vehicle.Plate)
	}

	for i := 0; i < 50; i++ {
		driver := drivers[rng.Intn(len(drivers))]
		vehicle := &vehicles[rng.Intn(len(vehicles))]

		start := now.AddDate(0, 0, -rng.Intn(30)).Add(-time.Duration(rng.Intn(12)) * time.Hour)
		end := start.Add(time.Duration(2+rng.Intn(46)) * time.Hour)
		distance := 50 + rng.Float64()*850
		kmInicial := vehicle.Odometer + rng.Float64()*50
		kmFinal := kmInicial + distance
		vehicle.Odometer = kmFinal

		trip := Trip{
			DriverID:      driver.ID,
			VehicleID:     vehicle.ID,
			Origin:        seedCities[rng.Intn(len(seedCities))],
			Destination:   seedCities[rng.Intn(len(seedCities))],
			StartTime:     start,
			EndTime:       &end,
			StartOdometer: kmInicial,
			EndOdometer:   &kmFinal,
			TotalDistance: &distance,
		}
		if err := db.Create(&trip).Error; err != nil {
			return err
		}

		gallons := distance / (8 + rng.Float64()*6)
		expenses := []Expense{
			{TripID: trip.ID, Type: ExpenseFuel, Amount: 100 + rng.Float64()*1100, Gallons: &gallons, Description: "Combustible diesel", Date: start},
		}
		if rng.Float64() < 0.6 {
			expenses = append(expenses, Expense{TripID: trip.ID, Type: ExpenseToll, Amount: 10 + rng.Float64()*140, Description: "Peaje", Date: start.Add(time.Hour)})
		}
		if rng.Float64() < 0.3 {
			expenses = append(expenses, Expense{TripID: trip.ID, Type: ExpenseMaintenance, Amount: 50 + rng.Float64()*350, Description: "Mantenimiento preventivo", Date: end})
		}
		if err := db.Create(&expenses).Error; err != nil {
			return err
		}

		prediction := Prediction{
			TripID:        trip.ID,
			EstimatedCost: 150 + rng.Float64()*1350,
			IsAnomaly:     rng.Float64() < 0.15,
			PredictedAt:   start,
		}
		if err := db.Create(&prediction).Error; err != nil {
			return err
		}
	}

	// Flush the accumulated odometers back onto the vehicles.
	for i := range vehicles {
		if err := db.Model(&vehicles[i]).Updates(map[string]interface{}{
			"odometer": vehicles[i].Odometer,
			"state":    VehicleAvailable,
		}).Error; err != nil {
			return err
		}
	}

	log.Info("seed: finished")
	return nil
}
