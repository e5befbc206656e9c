package repository

import (
	"context"

	"order-intake-service/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AddressRepository defines the interface for address data access
type AddressRepository interface {
	// FindOrCreate inserts addr unless a row with the same identity already
	// exists for the user, in which case addr is replaced by the stored row.
	FindOrCreate(ctx context.Context, addr *models.Address) (created bool, err error)
	// MakeDefault marks addr as the user's only default address of its type.
	MakeDefault(ctx context.Context, addr *models.Address) error
}

type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) AddressRepository {
	return &GormAddressRepository{db: db}
}

var addressIdentityColumns = []clause.Column{
	{Name: "user_id"},
	{Name: "type"},
	{Name: "address_line_1"},
	{Name: "city"},
	{Name: "state_province"},
	{Name: "postal_code"},
	{Name: "country"},
}

func (r *GormAddressRepository) FindOrCreate(ctx context.Context, addr *models.Address) (bool, error) {
	db := r.db.WithContext(ctx)

	// DO NOTHING keeps a concurrent insert of the same address from aborting the transaction.
	res := db.Clauses(clause.OnConflict{Columns: addressIdentityColumns, DoNothing: true}).Create(addr)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var existing models.Address
	err := db.Where(
		"user_id = ? AND type = ? AND address_line_1 = ? AND city = ? AND state_province = ? AND postal_code = ? AND country = ?",
		addr.UserID, addr.Type, addr.AddressLine1, addr.City, addr.StateProvince, addr.PostalCode, addr.Country,
	).First(&existing).Error
	if err != nil {
		return false, err
	}
	*addr = existing
	return false, nil
}

func (r *GormAddressRepository) MakeDefault(ctx context.Context, addr *models.Address) error {
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Address{}).
		Where("user_id = ? AND type = ? AND id <> ? AND is_default = ?", addr.UserID, addr.Type, addr.ID, true).
		Update("is_default", false).Error; err != nil {
		return err
	}

	res := db.Model(&models.Address{}).Where("id = ?", addr.ID).Update("is_default", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	addr.IsDefault = true
	return nil
}
