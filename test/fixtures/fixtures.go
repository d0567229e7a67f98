package fixtures

import (
	"github.com/khatapp/udhaar/internal/model"
)

var (
	TestOwner = model.RegisterOwnerRequest{
		Name:  "Asha Stores",
		Phone: "9000000001",
		Pin:   "1234",
	}

	TestOwnerSecond = model.RegisterOwnerRequest{
		Name:  "Balu Kirana",
		Phone: "9000000002",
		Pin:   "4321",
	}

	TestCustomer = model.AddCustomerRequest{
		Name:  "Ravi",
		Phone: "9100000001",
		Pin:   "1111",
	}

	TestCustomerNoPin = model.AddCustomerRequest{
		Name:  "Meena",
		Phone: "9100000002",
	}
)

func NewCreditRequest(customerID string, amount float64, note string) map[string]any {
	return map[string]any{
		"customer_id": customerID,
		"type":        "credit",
		"amount":      amount,
		"note":        note,
	}
}

func NewPaymentRequest(customerID string, amount float64, note string) map[string]any {
	return map[string]any{
		"customer_id": customerID,
		"type":        "payment",
		"amount":      amount,
		"note":        note,
	}
}
