package repository

import (
	"time"

	"github.com/khatapp/udhaar/internal/model"
)

type OwnerEntity struct {
	ID        string    `db:"id"         gorm:"primaryKey;column:id"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	Phone     string    `db:"phone"      gorm:"column:phone;not null;uniqueIndex"`
	Pin       string    `db:"pin"        gorm:"column:pin;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (OwnerEntity) TableName() string {
	return "owners"
}

func toOwnerEntity(m *model.Owner) *OwnerEntity {
	if m == nil {
		return nil
	}
	return &OwnerEntity{
		ID:        m.ID,
		Name:      m.Name,
		Phone:     m.Phone,
		Pin:       m.PinHash,
		CreatedAt: m.CreatedAt,
	}
}

func toOwnerModel(e *OwnerEntity) *model.Owner {
	if e == nil {
		return nil
	}
	return &model.Owner{
		ID:        e.ID,
		Name:      e.Name,
		Phone:     e.Phone,
		PinHash:   e.Pin,
		CreatedAt: e.CreatedAt,
	}
}
