package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ExpenseFuel        = "COMBUSTIBLE"
	ExpenseToll        = "PEAJE"
	ExpenseMaintenance = "MANTENIMIENTO"
	ExpensePerDiem     = "VIATICOS"
	ExpenseOther       = "OTROS"
)

var ExpenseTypes = []string{ExpenseFuel, ExpenseToll, ExpenseMaintenance, ExpensePerDiem, ExpenseOther}

func ValidExpenseType(t string) bool {
	for _, v := range ExpenseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Expense is an additive cost record on a trip; immutable after creation.
type Expense struct {
	gorm.Model
	TripID      uint      `json:"viajeId" gorm:"index;not null"`
	Type        string    `json:"tipo" gorm:"size:16;not null;default:OTROS"`
	Amount      float64   `json:"monto" gorm:"not null"`
	Gallons     *float64  `json:"galones"`
	Description string    `json:"descripcion"`
	ReceiptURL  string    `json:"imagenUrl"`
	Date        time.Time `json:"fecha" gorm:"index;not null"`
}
