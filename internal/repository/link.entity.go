package repository

import (
	"github.com/khatapp/udhaar/internal/model"
)

// LinkEntity is one row of the owner↔customer many-to-many relation. The
// composite unique index is the authoritative guard against an owner
// linking the same customer twice.
type LinkEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	OwnerID    string          `db:"owner_id"    gorm:"column:owner_id;not null;uniqueIndex:idx_owner_customer"`
	Owner      *OwnerEntity    `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	CustomerID string          `db:"customer_id" gorm:"column:customer_id;not null;uniqueIndex:idx_owner_customer;index"`
	Customer   *CustomerEntity `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE"`
	IsActive   bool            `db:"is_active"   gorm:"column:is_active;not null;default:true"`
}

func (LinkEntity) TableName() string {
	return "owner_customers"
}

func toLinkEntity(m *model.OwnerCustomerLink) *LinkEntity {
	if m == nil {
		return nil
	}
	return &LinkEntity{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		CustomerID: m.CustomerID,
		IsActive:   m.IsActive,
	}
}

func toLinkModel(e *LinkEntity) *model.OwnerCustomerLink {
	if e == nil {
		return nil
	}
	return &model.OwnerCustomerLink{
		ID:         e.ID,
		OwnerID:    e.OwnerID,
		CustomerID: e.CustomerID,
		IsActive:   e.IsActive,
	}
}

func toLinkModels(entities []*LinkEntity) []*model.OwnerCustomerLink {
	if entities == nil {
		return nil
	}
	models := make([]*model.OwnerCustomerLink, len(entities))
	for i, e := range entities {
		models[i] = toLinkModel(e)
	}
	return models
}
