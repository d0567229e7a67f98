package model

import (
	"errors"
	"strings"
	"time"
)

// TransactionType is the closed set of ledger entry kinds. Historical data
// carried free-cased strings ("Payment" vs "payment"); new writes are
// normalized through ParseTransactionType and reads stay case-insensitive.
type TransactionType string

const (
	TransactionCredit  TransactionType = "credit"
	TransactionPayment TransactionType = "payment"
)

// ParseTransactionType normalizes a free-form type string into the enum.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit":
		return TransactionCredit, nil
	case "payment":
		return TransactionPayment, nil
	}
	return "", errors.New("type must be credit or payment")
}

// IsPayment reports whether a stored type string means payment,
// tolerating legacy casing.
func IsPayment(storedType string) bool {
	return strings.EqualFold(storedType, string(TransactionPayment))
}

// Transaction is one immutable ledger entry of an (owner, customer) pair.
// Entries are never updated or deleted; balances are derived by folding.
type Transaction struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	CustomerID string    `json:"customer_id"`
	Type       string    `json:"type"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionCreateRequest is the input for recording a ledger entry.
type TransactionCreateRequest struct {
	CustomerID string
	Type       string
	Amount     float64
	Note       string
}

func (p TransactionCreateRequest) Validate() error {
	if p.CustomerID == "" {
		return errors.New("customer_id is required")
	}
	if _, err := ParseTransactionType(p.Type); err != nil {
		return err
	}
	if p.Amount < 0 {
		return errors.New("amount must be non-negative")
	}
	return nil
}

// TransactionFilter controls ledger queries. OwnerID nil means the
// customer's entire cross-shop history; set, it scopes the query to one
// shop's ledger with that customer. Both shapes are first-class because
// authorization and balance semantics differ between them.
type TransactionFilter struct {
	CustomerID string
	OwnerID    *string
	Limit      int // default 50
	Offset     int
	Desc       bool // order by created_at, display wants most-recent-first
}
