package domain

import "time"

// SupplierStatus representa a situação comercial do fornecedor.
type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "ACTIVE"
	SupplierInactive SupplierStatus = "INACTIVE"
)

// Supplier representa um fornecedor de pedidos de compra.
type Supplier struct {
	ID            string         `json:"id" db:"id"`
	Name          string         `json:"name" db:"name"`
	Contact       string         `json:"contact" db:"contact"`
	Email         string         `json:"email" db:"email"`
	Phone         string         `json:"phone" db:"phone"`
	Website       string         `json:"website" db:"website"`
	CategoryLabel string         `json:"category_label" db:"category_label"` // texto livre
	Status        SupplierStatus `json:"status" db:"status"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// NewSupplier é o payload de criação. Status vazio assume ACTIVE.
type NewSupplier struct {
	Name          string         `json:"name" validate:"required,max=200"`
	Contact       string         `json:"contact" validate:"max=200"`
	Email         string         `json:"email" validate:"omitempty,email"`
	Phone         string         `json:"phone" validate:"max=50"`
	Website       string         `json:"website" validate:"omitempty,url"`
	CategoryLabel string         `json:"category_label" validate:"max=100"`
	Status        SupplierStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

type SupplierPatch struct {
	Name          *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Contact       *string         `json:"contact" validate:"omitempty,max=200"`
	Email         *string         `json:"email" validate:"omitempty,email"`
	Phone         *string         `json:"phone" validate:"omitempty,max=50"`
	Website       *string         `json:"website" validate:"omitempty,url"`
	CategoryLabel *string         `json:"category_label" validate:"omitempty,max=100"`
	Status        *SupplierStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (sp SupplierPatch) Apply(s *Supplier) {
	if sp.Name != nil {
		s.Name = *sp.Name
	}
	if sp.Contact != nil {
		s.Contact = *sp.Contact
	}
	if sp.Email != nil {
		s.Email = *sp.Email
	}
	if sp.Phone != nil {
		s.Phone = *sp.Phone
	}
	if sp.Website != nil {
		s.Website = *sp.Website
	}
	if sp.CategoryLabel != nil {
		s.CategoryLabel = *sp.CategoryLabel
	}
	if sp.Status != nil {
		s.Status = *sp.Status
	}
}

type SupplierFilter struct {
	Name        string
	Status      SupplierStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Sort        Sort
	Page        Page
}
