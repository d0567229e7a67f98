package model

import (
	"errors"
	"time"
)

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	PinHash   *string   `json:"-"` // nullable, customers may never log in
	CreatedAt time.Time `json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

// AddCustomerRequest is the input for an owner registering a customer.
// Pin is optional; a customer without one cannot log in until it is set.
type AddCustomerRequest struct {
	Name  string
	Phone string
	Pin   string
}

func (p AddCustomerRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !ValidPhone(p.Phone) {
		return errors.New("phone must be exactly 10 digits")
	}
	if p.Pin != "" && !ValidPin(p.Pin) {
		return errors.New("pin must be exactly 4 digits")
	}
	return nil
}

// LinkedCustomer is a customer row joined with the owner's link and the
// running balance of that owner's ledger with the customer. It feeds the
// owner dashboard.
type LinkedCustomer struct {
	LinkID   int64    `json:"link_id"`
	Customer Customer `json:"customer"`
	IsActive bool     `json:"is_active"`
	Balance  float64  `json:"balance"`
}
