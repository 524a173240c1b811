package store

import (
	"context"
	"time"

	"github.com/artpar/wheelspec/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for wheel specification forms.
// It is the only component allowed to read or write the record store.
type Store interface {
	// CreateWheelSpecification checks the form number is free and inserts
	// the form in the saved status. On success the record's Status,
	// CreatedAt and UpdatedAt reflect the stored row.
	CreateWheelSpecification(ctx context.Context, spec *domain.WheelSpecification) error

	// GetWheelSpecification returns the full record for a form number.
	GetWheelSpecification(ctx context.Context, formNumber string) (*domain.WheelSpecification, error)

	// ListWheelSpecifications returns every form matching all set filter fields.
	ListWheelSpecifications(ctx context.Context, filter domain.Filter) ([]domain.WheelSpecification, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// PoolOptions bounds the connection pool. MaxIdleConns is the steady pool
// size; MaxOpenConns adds the overflow above it.
type PoolOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultPoolOptions returns a pool of 10 connections with 20 overflow.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		MaxIdleConns:    10,
		MaxOpenConns:    30,
		ConnMaxLifetime: time.Hour,
	}
}

// Normalize ensures pool options have valid values.
func (o PoolOptions) Normalize() PoolOptions {
	def := DefaultPoolOptions()
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = def.MaxIdleConns
	}
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = def.MaxOpenConns
	}
	if o.MaxOpenConns < o.MaxIdleConns {
		o.MaxOpenConns = o.MaxIdleConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = def.ConnMaxLifetime
	}
	return o
}
