package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/vendra/salescore/internal/domain/identity"
)

const (
	getCustomerSQL     = `SELECT id, name, email, phone FROM customers WHERE id = $1`
	customerByEmailSQL = `SELECT id, name, email, phone FROM customers WHERE email = $1`
	customerByPhoneSQL = `SELECT id, name, email, phone FROM customers WHERE phone = $1`
	insertCustomerSQL  = `INSERT INTO customers (name, email, phone)
		VALUES ($1, $2, $3) RETURNING id`

	getSalespersonSQL     = `SELECT id, name, email, phone FROM salespersons WHERE id = $1`
	salespersonByEmailSQL = `SELECT id, name, email, phone FROM salespersons WHERE email = $1`
	insertSalespersonSQL  = `INSERT INTO salespersons (name, email, phone)
		VALUES ($1, $2, $3) RETURNING id`
)

var (
	_ identity.CustomerRepository    = (*CustomerRepository)(nil)
	_ identity.SalespersonRepository = (*SalespersonRepository)(nil)
)

// CustomerRepository implements identity.CustomerRepository backed by
// PostgreSQL.
type CustomerRepository struct {
	db DBTX
}

// NewCustomerRepository returns a CustomerRepository over the given pool.
func NewCustomerRepository(db DBTX) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*identity.Customer, error) {
	return r.getOne(ctx, getCustomerSQL, id)
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*identity.Customer, error) {
	return r.getOne(ctx, customerByEmailSQL, email)
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phone string) (*identity.Customer, error) {
	return r.getOne(ctx, customerByPhoneSQL, phone)
}

// Register inserts a customer and fills in its assigned ID.
func (r *CustomerRepository) Register(ctx context.Context, c *identity.Customer) error {
	if err := identity.ValidateRegistration(c.Name, c.Email, c.Phone); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, insertCustomerSQL, c.Name, c.Email, c.Phone).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("registering customer %q: %w", c.Email, err)
	}
	return nil
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg any) (*identity.Customer, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (identity.Customer, error) {
		var c identity.Customer
		err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone)
		return c, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	return &c, nil
}

// SalespersonRepository implements identity.SalespersonRepository backed by
// PostgreSQL.
type SalespersonRepository struct {
	db DBTX
}

// NewSalespersonRepository returns a SalespersonRepository over the given pool.
func NewSalespersonRepository(db DBTX) *SalespersonRepository {
	return &SalespersonRepository{db: db}
}

func (r *SalespersonRepository) GetByID(ctx context.Context, id int64) (*identity.Salesperson, error) {
	return r.getOne(ctx, getSalespersonSQL, id)
}

func (r *SalespersonRepository) FindByEmail(ctx context.Context, email string) (*identity.Salesperson, error) {
	return r.getOne(ctx, salespersonByEmailSQL, email)
}

// Register inserts a salesperson and fills in its assigned ID.
func (r *SalespersonRepository) Register(ctx context.Context, s *identity.Salesperson) error {
	if err := identity.ValidateRegistration(s.Name, s.Email, s.Phone); err != nil {
		return err
	}
	err := r.db.QueryRow(ctx, insertSalespersonSQL, s.Name, s.Email, s.Phone).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("registering salesperson %q: %w", s.Email, err)
	}
	return nil
}

func (r *SalespersonRepository) getOne(ctx context.Context, query string, arg any) (*identity.Salesperson, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying salesperson: %w", err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (identity.Salesperson, error) {
		var s identity.Salesperson
		err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Phone)
		return s, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("querying salesperson: %w", err)
	}
	return &s, nil
}
