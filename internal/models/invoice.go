package models

import (
	"time"

	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// DateLayout is the calendar date format used on invoices.
const DateLayout = "2006-01-02"

// Invoice is one delivery billed by elapsed time.
//
// DurationMinutes, TotalCost and AmountPending are derived from the other
// fields and are always recomputed together on create and edit; they are
// never written independently.
type Invoice struct {
	Base            `bson:",inline"`
	CustomerID      utils.SixID `bson:"customer_id" json:"customer_id"`
	Date            string      `bson:"date" json:"date"` // DateLayout
	StartTime       string      `bson:"start_time" json:"start_time"`
	EndTime         string      `bson:"end_time" json:"end_time"`
	RatePerMinute   float64     `bson:"rate_per_minute" json:"rate_per_minute"`
	DurationMinutes int         `bson:"duration_minutes" json:"duration_minutes"`
	TotalCost       float64     `bson:"total_cost" json:"total_cost"`
	AmountReceived  float64     `bson:"amount_received" json:"amount_received"`
	AmountPending   float64     `bson:"amount_pending" json:"amount_pending"`
	CreatedAt       time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `bson:"updated_at" json:"updated_at"`
}

// Overpaid reports whether the customer paid more than the invoice total.
// Overpayment is kept as a negative pending amount, not clamped to zero,
// so exports can render it distinctly.
func (inv *Invoice) Overpaid() bool {
	return inv.AmountPending < 0
}
