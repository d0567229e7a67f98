package model

// OwnerCustomerLink is one owner's relationship with one customer. A pair
// appears at most once; the flag soft-disables the relationship without
// touching ledger history.
type OwnerCustomerLink struct {
	ID         int64  `json:"id"`
	OwnerID    string `json:"owner_id"`
	CustomerID string `json:"customer_id"`
	IsActive   bool   `json:"is_active"`
}

func (OwnerCustomerLink) TableName() string { return "owner_customers" }
