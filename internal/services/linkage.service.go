package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*model.Customer, error)
	ExistsWithPhone(ctx context.Context, phone string, excludeID string) (bool, error)
	UpdatePhone(ctx context.Context, id string, phone string) error
	Delete(ctx context.Context, id string) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LinkRepository interface {
	Create(ctx context.Context, link *model.OwnerCustomerLink) (*model.OwnerCustomerLink, error)
	GetByID(ctx context.Context, id int64) (*model.OwnerCustomerLink, error)
	GetByPair(ctx context.Context, ownerID, customerID string) (*model.OwnerCustomerLink, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.OwnerCustomerLink, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
}

// LinkageService maintains the owner↔customer relation: registering
// customers into a shop's book, toggling them, unlinking them, and the
// phone handover flow.
type LinkageService struct {
	customerRepo CustomerRepository
	linkRepo     LinkRepository
	txnRepo      TransactionRepository
}

func NewLinkageService(customerRepo CustomerRepository, linkRepo LinkRepository, txnRepo TransactionRepository) *LinkageService {
	return &LinkageService{
		customerRepo: customerRepo,
		linkRepo:     linkRepo,
		txnRepo:      txnRepo,
	}
}

// AddCustomer links a customer into the calling owner's book. A phone the
// system already knows reuses that customer record; an unknown phone
// creates one. Customer row and link are written in one transaction, so
// either both land or neither does.
func (s *LinkageService) AddCustomer(ctx context.Context, ident model.Identity, p model.AddCustomerRequest) (*model.LinkedCustomer, error) {
	if !ident.IsOwner() {
		return nil, ErrForbidden
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var out *model.LinkedCustomer
	err := s.customerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customerRepo.GetByPhone(ctx, p.Phone)
		switch {
		case err == nil:
			// fast-path duplicate check; the unique (owner, customer)
			// index below is the authoritative guard
			if _, lerr := s.linkRepo.GetByPair(ctx, ident.ID, customer.ID); lerr == nil {
				return ErrAlreadyLinked
			} else if !errors.Is(lerr, repository.ErrLinkNotFound) {
				return lerr
			}
		case errors.Is(err, repository.ErrCustomerNotFound):
			var pinHash *string
			if p.Pin != "" {
				h, herr := hashPin(p.Pin)
				if herr != nil {
					return herr
				}
				pinHash = &h
			}
			customer, err = s.customerRepo.Create(ctx, &model.Customer{
				ID:      uuid.NewString(),
				Name:    p.Name,
				Phone:   p.Phone,
				PinHash: pinHash,
			})
			if errors.Is(err, repository.ErrPhoneExists) {
				// lost the insert race; link against the account
				// that won it
				customer, err = s.customerRepo.GetByPhone(ctx, p.Phone)
			}
			if err != nil {
				return fmt.Errorf("create customer: %w", err)
			}
		default:
			return err
		}

		link, err := s.linkRepo.Create(ctx, &model.OwnerCustomerLink{
			OwnerID:    ident.ID,
			CustomerID: customer.ID,
			IsActive:   true,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateLink) {
				return ErrAlreadyLinked
			}
			return fmt.Errorf("create link: %w", err)
		}

		out = &model.LinkedCustomer{
			LinkID:   link.ID,
			Customer: *customer,
			IsActive: link.IsActive,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleLink flips the active flag of one of the owner's links.
func (s *LinkageService) ToggleLink(ctx context.Context, ident model.Identity, linkID int64) (*model.OwnerCustomerLink, error) {
	if !ident.IsOwner() {
		return nil, ErrForbidden
	}

	link, err := s.linkRepo.GetByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if link.OwnerID != ident.ID {
		return nil, ErrForbidden
	}

	if err := s.linkRepo.SetActive(ctx, linkID, !link.IsActive); err != nil {
		return nil, err
	}
	link.IsActive = !link.IsActive
	return link, nil
}

// DeleteLink removes one of the owner's links. A customer whose last link
// is removed is deleted with it; both deletes ride one transaction.
func (s *LinkageService) DeleteLink(ctx context.Context, ident model.Identity, linkID int64) error {
	if !ident.IsOwner() {
		return ErrForbidden
	}

	return s.customerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		link, err := s.linkRepo.GetByID(ctx, linkID)
		if err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				return ErrNotFound
			}
			return err
		}
		if link.OwnerID != ident.ID {
			return ErrForbidden
		}

		if err := s.linkRepo.Delete(ctx, linkID); err != nil {
			return err
		}

		remaining, err := s.linkRepo.CountByCustomer(ctx, link.CustomerID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := s.customerRepo.Delete(ctx, link.CustomerID); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdatePhone moves a linked customer to a new number. Global uniqueness
// is re-checked before the write; the unique index backstops the race
// where another customer grabs the number between check and update.
func (s *LinkageService) UpdatePhone(ctx context.Context, ident model.Identity, customerID string, newPhone string) error {
	if !ident.IsOwner() {
		return ErrForbidden
	}

	newPhone = strings.TrimSpace(newPhone)
	if !model.ValidPhone(newPhone) {
		return fmt.Errorf("%w: phone must be exactly 10 digits", ErrValidation)
	}

	return s.customerRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return ErrNotFound
			}
			return err
		}
		if _, err := s.linkRepo.GetByPair(ctx, ident.ID, customerID); err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				return ErrForbidden
			}
			return err
		}

		taken, err := s.customerRepo.ExistsWithPhone(ctx, newPhone, customerID)
		if err != nil {
			return err
		}
		if taken {
			return ErrPhoneTaken
		}

		if err := s.customerRepo.UpdatePhone(ctx, customerID, newPhone); err != nil {
			if errors.Is(err, repository.ErrPhoneExists) {
				return ErrPhoneTaken
			}
			return err
		}
		return nil
	})
}

// ListCustomers returns the owner's book: every linked customer with the
// link state and that shop's running balance.
func (s *LinkageService) ListCustomers(ctx context.Context, ident model.Identity) ([]*model.LinkedCustomer, error) {
	if !ident.IsOwner() {
		return nil, ErrForbidden
	}

	links, err := s.linkRepo.ListByOwner(ctx, ident.ID)
	if err != nil {
		return nil, err
	}

	out := make([]*model.LinkedCustomer, 0, len(links))
	for _, link := range links {
		customer, err := s.customerRepo.GetByID(ctx, link.CustomerID)
		if err != nil {
			return nil, err
		}

		ownerID := ident.ID
		txns, _, err := s.txnRepo.List(ctx, model.TransactionFilter{
			CustomerID: link.CustomerID,
			OwnerID:    &ownerID,
		})
		if err != nil {
			return nil, err
		}

		out = append(out, &model.LinkedCustomer{
			LinkID:   link.ID,
			Customer: *customer,
			IsActive: link.IsActive,
			Balance:  ComputeBalance(txns),
		})
	}
	return out, nil
}
