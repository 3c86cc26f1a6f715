package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Prediction stores the AI service's cost estimate and anomaly verdict for a
// trip (1:1), kept for later comparison against the trip's actual expenses.
type Prediction struct {
	gorm.Model
	TripID        uint           `json:"viajeId" gorm:"uniqueIndex;not null"`
	EstimatedCost float64        `json:"costoEstimado"`
	IsAnomaly     bool           `json:"esAnomalo" gorm:"index"`
	PredictedAt   time.Time      `json:"fechaPrediccion" gorm:"index;not null"`
	RawResponse   datatypes.JSON `json:"-"`

	Trip *Trip `json:"viaje,omitempty" gorm:"foreignKey:TripID"`
}
