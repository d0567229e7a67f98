package repository

import (
	"context"
	"errors"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrOwnerNotFound    = errors.New("owner not found")
	ErrOwnerPhoneExists = errors.New("owner phone already registered")
)

type OwnerRepository struct {
	*pg.DB
}

func NewOwnerRepository(db *pg.DB) *OwnerRepository {
	return &OwnerRepository{
		db,
	}
}

func (r *OwnerRepository) Create(ctx context.Context, owner *model.Owner) (*model.Owner, error) {
	entity := toOwnerEntity(owner)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOwnerPhoneExists
		}
		return nil, err
	}

	return toOwnerModel(entity), nil
}

func (r *OwnerRepository) GetByID(ctx context.Context, id string) (*model.Owner, error) {
	var entity OwnerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return toOwnerModel(&entity), nil
}

func (r *OwnerRepository) GetByPhone(ctx context.Context, phone string) (*model.Owner, error) {
	var entity OwnerEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("phone = ?", phone).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}
	return toOwnerModel(&entity), nil
}

func (r *OwnerRepository) UpdatePin(ctx context.Context, id string, pinHash string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&OwnerEntity{}).
		Where("id = ?", id).
		Update("pin", pinHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOwnerNotFound
	}
	return nil
}
