package model

import (
	"errors"
	"time"
)

type Owner struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	PinHash   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Owner) TableName() string { return "owners" }

// RegisterOwnerRequest is the input for owner self-registration.
type RegisterOwnerRequest struct {
	Name  string
	Phone string
	Pin   string
}

func (p RegisterOwnerRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if !ValidPhone(p.Phone) {
		return errors.New("phone must be exactly 10 digits")
	}
	if !ValidPin(p.Pin) {
		return errors.New("pin must be exactly 4 digits")
	}
	return nil
}

// ValidPhone reports whether s is exactly 10 numeric characters.
func ValidPhone(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidPin reports whether s is exactly 4 numeric characters.
func ValidPin(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
