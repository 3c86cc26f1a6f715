package Notifications

import (
	"fmt"
	"math"
	"time"

	"Flotilla/Models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WarningDays is how far ahead of a document's expiry the scan starts
// alerting. There is no lower bound: already-expired documents keep alerting.
const WarningDays = 7

// Notifier creates user notifications and runs the document-expiry scan.
// Push is optional; when nil, notifications are stored but not pushed.
type Notifier struct {
	DB   *gorm.DB
	Push *Pusher
}

func NewNotifier(db *gorm.DB, push *Pusher) *Notifier {
	return &Notifier{DB: db, Push: push}
}

// Create stores a notification and fans it out to the user's devices.
func (n *Notifier) Create(userID uint, message string) error {
	notification := Models.Notification{
		UserID:  userID,
		Message: message,
		Read:    false,
		Date:    time.Now(),
	}
	if err := n.DB.Create(&notification).Error; err != nil {
		return err
	}
	if n.Push != nil {
		n.Push.Send(n.DB, userID, message)
	}
	return nil
}

// createIfAbsent creates the notification unless an unread one with the same
// text already exists for the user. Returns whether a row was created.
//
// Two concurrent scans can race this check-then-insert; the worst case is one
// duplicate notification, which the cleanup sweep removes.
func (n *Notifier) createIfAbsent(userID uint, message string) (bool, error) {
	var count int64
	err := n.DB.Model(&Models.Notification{}).
		Where("user_id = ? AND message = ? AND read = ?", userID, message, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	return true, n.Create(userID, message)
}

// CheckExpiringDocuments scans every vehicle whose SOAT or circulation
// certificate expires within WarningDays (or already expired) and notifies
// all admins plus the vehicle's current driver. Safe to call repeatedly: an
// unread notification with identical text is never duplicated. The text
// embeds the day count, so a new day means a new message and a new row.
// Returns the number of notifications created.
func (n *Notifier) CheckExpiringDocuments() (int, error) {
	today := time.Now()
	warningDate := today.AddDate(0, 0, WarningDays)

	var vehicles []Models.Vehicle
	err := n.DB.
		Preload("Soat").Preload("Certificate").Preload("CurrentDriver").
		Joins("LEFT JOIN soats ON soats.vehicle_id = vehicles.id AND soats.deleted_at IS NULL").
		Joins("LEFT JOIN circulation_certificates ON circulation_certificates.vehicle_id = vehicles.id AND circulation_certificates.deleted_at IS NULL").
		Where("soats.expiry_date <= ? OR circulation_certificates.expiry_date <= ?", warningDate, warningDate).
		Distinct("vehicles.*").
		Find(&vehicles).Error
	if err != nil {
		return 0, err
	}

	var admins []Models.User
	if err := n.DB.Where("role = ?", Models.RoleAdmin).Find(&admins).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, vehicle := range vehicles {
		if vehicle.Soat != nil {
			c, err := n.notifyDocument(vehicle, "El SOAT", vehicle.Soat.ExpiryDate, today, admins)
			if err != nil {
				return created, err
			}
			created += c
		}
		if vehicle.Certificate != nil {
			c, err := n.notifyDocument(vehicle, "El Certificado", vehicle.Certificate.ExpiryDate, today, admins)
			if err != nil {
				return created, err
			}
			created += c
		}
	}

	log.Infof("document expiry scan: %d vehicles flagged, %d notifications created", len(vehicles), created)
	return created, nil
}

func (n *Notifier) notifyDocument(vehicle Models.Vehicle, docLabel string, expiry, today time.Time, admins []Models.User) (int, error) {
	daysLeft := DaysUntil(expiry, today)
	if daysLeft > WarningDays {
		return 0, nil
	}

	var message string
	if daysLeft < 0 {
		message = fmt.Sprintf("ALERTA: %s del vehículo %s venció hace %d días.", docLabel, vehicle.Plate, -daysLeft)
	} else {
		message = fmt.Sprintf("AVISO: %s del vehículo %s vence en %d días.", docLabel, vehicle.Plate, daysLeft)
	}

	created := 0
	for _, admin := range admins {
		ok, err := n.createIfAbsent(admin.ID, message)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	if vehicle.CurrentDriver != nil {
		ok, err := n.createIfAbsent(vehicle.CurrentDriver.ID, message)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// DaysUntil is the rounded-up number of whole days between today and expiry;
// negative once expired. 0 means the document expires today.
func DaysUntil(expiry, today time.Time) int {
	return int(math.Ceil(expiry.Sub(today).Hours() / 24))
}
