package repository

import (
	"context"
	"errors"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateLink = errors.New("customer already linked to owner")
)

type LinkRepository struct {
	*pg.DB
}

func NewLinkRepository(db *pg.DB) *LinkRepository {
	return &LinkRepository{
		db,
	}
}

func (r *LinkRepository) Create(ctx context.Context, link *model.OwnerCustomerLink) (*model.OwnerCustomerLink, error) {
	entity := toLinkEntity(link)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateLink
		}
		return nil, err
	}

	return toLinkModel(entity), nil
}

func (r *LinkRepository) GetByID(ctx context.Context, id int64) (*model.OwnerCustomerLink, error) {
	var entity LinkEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return toLinkModel(&entity), nil
}

func (r *LinkRepository) GetByPair(ctx context.Context, ownerID, customerID string) (*model.OwnerCustomerLink, error) {
	var entity LinkEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("owner_id = ? AND customer_id = ?", ownerID, customerID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return toLinkModel(&entity), nil
}

func (r *LinkRepository) ListByOwner(ctx context.Context, ownerID string) ([]*model.OwnerCustomerLink, error) {
	var entities []*LinkEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toLinkModels(entities), nil
}

// SetActive flips nothing by itself; the caller reads the link, decides
// the new state, and this persists it.
func (r *LinkRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&LinkEntity{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

func (r *LinkRepository) Delete(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Where("id = ?", id).
		Delete(&LinkEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// CountByCustomer backs the last-link check of the unlink flow: a
// customer whose final link is removed is not retained.
func (r *LinkRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&LinkEntity{}).
		Where("customer_id = ?", customerID).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
