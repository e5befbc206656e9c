package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories groups the table repositories bound to one connection or transaction.
type Repositories struct {
	Users     UserRepository
	Addresses AddressRepository
	Products  ProductRepository
	Orders    OrderRepository
}

func newRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewGormUserRepository(db),
		Addresses: NewGormAddressRepository(db),
		Products:  NewGormProductRepository(db),
		Orders:    NewGormOrderRepository(db),
	}
}

// Store hands out repositories. Work passed to Transaction commits as a unit
// or not at all.
type Store interface {
	Repos() *Repositories
	Transaction(ctx context.Context, fn func(tx *Repositories) error) error
}

// GormStore implements Store using GORM
type GormStore struct {
	db    *gorm.DB
	repos *Repositories
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, repos: newRepositories(db)}
}

func (s *GormStore) Repos() *Repositories {
	return s.repos
}

// Transaction runs fn inside a database transaction bound to ctx. Cancelling
// ctx aborts the transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}
