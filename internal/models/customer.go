package models

import "time"

// Customer is a water delivery client the operator bills.
type Customer struct {
	Base      `bson:",inline"`
	Name      string    `bson:"name" json:"name"`
	Contact   string    `bson:"contact,omitempty" json:"contact,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
