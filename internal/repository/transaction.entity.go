package repository

import (
	"time"

	"github.com/khatapp/udhaar/internal/model"
)

// TransactionEntity rows are append-only; there is no update or delete
// path anywhere in the repository.
type TransactionEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	OwnerID    string          `db:"owner_id"    gorm:"column:owner_id;not null;index"`
	Owner      *OwnerEntity    `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE"`
	CustomerID string          `db:"customer_id" gorm:"column:customer_id;not null;index"`
	Customer   *CustomerEntity `gorm:"foreignKey:CustomerID;references:ID;constraint:OnDelete:CASCADE"`
	Type       string          `db:"type"        gorm:"column:type;not null"`
	Amount     float64         `db:"amount"      gorm:"column:amount;not null"`
	Note       string          `db:"note"        gorm:"column:note"`
	CreatedAt  time.Time       `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		CustomerID: m.CustomerID,
		Type:       m.Type,
		Amount:     m.Amount,
		Note:       m.Note,
		CreatedAt:  m.CreatedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:         e.ID,
		OwnerID:    e.OwnerID,
		CustomerID: e.CustomerID,
		Type:       e.Type,
		Amount:     e.Amount,
		Note:       e.Note,
		CreatedAt:  e.CreatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
