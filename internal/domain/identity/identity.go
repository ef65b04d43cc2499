// Package identity provides customer and salesperson lookup and
// registration. Lookup is by ID, email, or phone; there are no passwords and
// no invariants beyond basic input validation.
package identity

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for identity operations.
var (
	ErrNotFound     = errors.New("identity not found")
	ErrEmptyName    = errors.New("name is required")
	ErrEmptyContact = errors.New("email or phone is required")
)

// Customer is a registered buyer.
type Customer struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// Salesperson is a registered seller who may be credited with sales.
type Salesperson struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

// CustomerRepository defines customer persistence operations.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	Register(ctx context.Context, c *Customer) error
}

// SalespersonRepository defines salesperson persistence operations.
type SalespersonRepository interface {
	GetByID(ctx context.Context, id int64) (*Salesperson, error)
	FindByEmail(ctx context.Context, email string) (*Salesperson, error)
	Register(ctx context.Context, s *Salesperson) error
}

// ValidateRegistration checks the minimal fields required to register.
func ValidateRegistration(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(email) == "" && strings.TrimSpace(phone) == "" {
		return ErrEmptyContact
	}
	return nil
}
