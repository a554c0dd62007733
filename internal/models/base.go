package models

import (
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// Base carries the document ID shared by all persisted entities.
type Base struct {
	ID utils.SixID `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID.IsZero() {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

func NewBase() Base {
	return Base{ID: utils.NewSixID()}
}
