package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	gateway "github.com/khatapp/udhaar/internal/gateways"
	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
	"github.com/khatapp/udhaar/pkg/prom"
)

type SMSGateway interface {
	Send(ctx context.Context, req gateway.SendRequest) (*gateway.SendResponse, error)
}

// ReminderService sends a balance-reminder SMS to one of the owner's
// customers through the provider gateway.
type ReminderService struct {
	customerRepo CustomerRepository
	linkRepo     LinkRepository
	txnRepo      TransactionRepository
	ownerRepo    OwnerRepository
	sms          SMSGateway
}

func NewReminderService(customerRepo CustomerRepository, linkRepo LinkRepository, txnRepo TransactionRepository, ownerRepo OwnerRepository, sms SMSGateway) *ReminderService {
	return &ReminderService{
		customerRepo: customerRepo,
		linkRepo:     linkRepo,
		txnRepo:      txnRepo,
		ownerRepo:    ownerRepo,
		sms:          sms,
	}
}

// Send dispatches one reminder with the customer's current balance in
// this shop. Only active links get reminders; a shop that paused the
// relationship should not keep messaging the customer.
func (s *ReminderService) Send(ctx context.Context, ident model.Identity, customerID string) (*gateway.SendResponse, error) {
	if !ident.IsOwner() {
		return nil, ErrForbidden
	}

	link, err := s.linkRepo.GetByPair(ctx, ident.ID, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !link.IsActive {
		return nil, ErrForbidden
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ownerID := ident.ID
	txns, _, err := s.txnRepo.List(ctx, model.TransactionFilter{
		CustomerID: customerID,
		OwnerID:    &ownerID,
	})
	if err != nil {
		return nil, err
	}
	balance := ComputeBalance(txns)

	owner, err := s.ownerRepo.GetByID(ctx, ident.ID)
	if err != nil {
		return nil, err
	}

	resp, err := s.sms.Send(ctx, gateway.SendRequest{
		MessageID:   uuid.NewString(),
		PhoneNumber: customer.Phone,
		Content:     fmt.Sprintf("%s: your outstanding balance is %.2f. Please settle at your convenience.", owner.Name, balance),
	})
	if err != nil {
		return nil, fmt.Errorf("send reminder: %w", err)
	}

	prom.ObserveReminderSent()
	return resp, nil
}
