package domain

import (
	"time"
)

// Valores assumidos quando o local é criado sem zona, tipo ou capacidade.
const (
	DefaultLocationZone     = "Nord"
	DefaultLocationType     = "Étagère"
	DefaultLocationCapacity = 100
)

// Location representa um local físico de armazenagem (prateleira, zona, doca).
// Invariante: 0 <= Occupancy <= Capacity.
type Location struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Zone      string    `json:"zone" db:"zone"`
	Type      string    `json:"type" db:"type"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Occupancy int       `json:"occupancy" db:"occupancy"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OccupancyRate devolve a ocupação em percentual (0 quando a capacidade é 0).
func (l Location) OccupancyRate() float64 {
	if l.Capacity == 0 {
		return 0
	}
	return float64(l.Occupancy) * 100 / float64(l.Capacity)
}

// NewLocation é o payload de criação. Capacity nil assume DefaultLocationCapacity.
type NewLocation struct {
	Name      string `json:"name" validate:"required,max=100"`
	Zone      string `json:"zone" validate:"max=100"`
	Type      string `json:"type" validate:"max=100"`
	Capacity  *int   `json:"capacity" validate:"omitempty,gte=0"`
	Occupancy int    `json:"occupancy" validate:"gte=0"`
}

type LocationPatch struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	Zone      *string `json:"zone" validate:"omitempty,max=100"`
	Type      *string `json:"type" validate:"omitempty,max=100"`
	Capacity  *int    `json:"capacity" validate:"omitempty,gte=0"`
	Occupancy *int    `json:"occupancy" validate:"omitempty,gte=0"`
}

func (lp LocationPatch) Apply(l *Location) {
	if lp.Name != nil {
		l.Name = *lp.Name
	}
	if lp.Zone != nil {
		l.Zone = *lp.Zone
	}
	if lp.Type != nil {
		l.Type = *lp.Type
	}
	if lp.Capacity != nil {
		l.Capacity = *lp.Capacity
	}
	if lp.Occupancy != nil {
		l.Occupancy = *lp.Occupancy
	}
}

type LocationFilter struct {
	Name        string
	Zone        string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Sort        Sort
	Page        Page
}
