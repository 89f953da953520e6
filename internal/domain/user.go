package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Oculta o hash da senha no JSON de resposta
	Name         string     `json:"name" db:"name"`
	Role         UserRole   `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// UserRole é o papel do usuário, usado pelo middleware de permissão.
type UserRole string

const (
	RoleStocker           UserRole = "STOCKER"
	RoleStockManager      UserRole = "STOCK_MANAGER"
	RolePurchasingManager UserRole = "PURCHASING_MANAGER"
)

// Valid informa se o papel é um dos conhecidos.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStocker, RoleStockManager, RolePurchasingManager:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

// UserRegistration representa o payload de entrada para o registro.
// Role vazio assume RoleStocker.
type UserRegistration struct {
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,max=72"` // limite do bcrypt
	Name     string   `json:"name" validate:"required,max=200"`
	Role     UserRole `json:"role" validate:"omitempty,oneof=STOCKER STOCK_MANAGER PURCHASING_MANAGER"`
}

// Credentials é o payload de login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session é devolvida no login e identifica o usuário autenticado.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserPatch é usado pela administração de usuários (nome, papel e situação).
type UserPatch struct {
	Name   *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Role   *UserRole   `json:"role" validate:"omitempty,oneof=STOCKER STOCK_MANAGER PURCHASING_MANAGER"`
	Status *UserStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

func (up UserPatch) Apply(u *User) {
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.Status != nil {
		u.Status = *up.Status
	}
}

// PasswordChange é o payload de troca de senha.
type PasswordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

type UserFilter struct {
	Name   string
	Role   UserRole
	Status UserStatus
	Sort   Sort
	Page   Page
}
