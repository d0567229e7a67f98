package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type OwnerRepository interface {
	Create(ctx context.Context, owner *model.Owner) (*model.Owner, error)
	GetByID(ctx context.Context, id string) (*model.Owner, error)
	GetByPhone(ctx context.Context, phone string) (*model.Owner, error)
	UpdatePin(ctx context.Context, id string, pinHash string) error
}

type CustomerCredentials interface {
	GetByPhone(ctx context.Context, phone string) (*model.Customer, error)
	UpdatePin(ctx context.Context, id string, pinHash string) error
}

type SessionStore interface {
	Create(identity model.Identity) (string, error)
	Destroy(token string) error
}

// Credentialed is the pin-update capability both account kinds expose.
// Pin updates dispatch on the role enum to one of these; there is no
// runtime table-name selection anywhere.
type Credentialed interface {
	UpdatePin(ctx context.Context, id string, pinHash string) error
}

// AccountService handles registration, login and pin management for both
// owners and customers.
type AccountService struct {
	ownerRepo    OwnerRepository
	customerRepo CustomerCredentials
	sessions     SessionStore
}

func NewAccountService(ownerRepo OwnerRepository, customerRepo CustomerCredentials, sessions SessionStore) *AccountService {
	return &AccountService{
		ownerRepo:    ownerRepo,
		customerRepo: customerRepo,
		sessions:     sessions,
	}
}

// RegisterOwner creates a shop owner account. Phones are globally unique
// among owners; pins are stored as bcrypt hashes, never plain.
func (s *AccountService) RegisterOwner(ctx context.Context, p model.RegisterOwnerRequest) (*model.Owner, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	hash, err := hashPin(p.Pin)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerRepo.Create(ctx, &model.Owner{
		ID:      uuid.NewString(),
		Name:    p.Name,
		Phone:   p.Phone,
		PinHash: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOwnerPhoneExists) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("create owner: %w", err)
	}
	return owner, nil
}

// Login authenticates a phone/pin pair for the given role and issues a
// session token. Lookups and pin mismatches report the same error, so a
// caller cannot probe which phones are registered.
func (s *AccountService) Login(ctx context.Context, role model.Role, phone, pin string) (string, model.Identity, error) {
	if !role.Valid() {
		return "", model.Identity{}, fmt.Errorf("%w: role must be owner or customer", ErrValidation)
	}
	phone = strings.TrimSpace(phone)

	var ident model.Identity
	var pinHash string

	switch role {
	case model.RoleOwner:
		owner, err := s.ownerRepo.GetByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, repository.ErrOwnerNotFound) {
				return "", model.Identity{}, ErrInvalidCredentials
			}
			return "", model.Identity{}, err
		}
		ident = model.Identity{ID: owner.ID, Role: model.RoleOwner, Name: owner.Name}
		pinHash = owner.PinHash
	case model.RoleCustomer:
		customer, err := s.customerRepo.GetByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, repository.ErrCustomerNotFound) {
				return "", model.Identity{}, ErrInvalidCredentials
			}
			return "", model.Identity{}, err
		}
		if customer.PinHash == nil {
			return "", model.Identity{}, ErrPinNotSet
		}
		ident = model.Identity{ID: customer.ID, Role: model.RoleCustomer, Name: customer.Name}
		pinHash = *customer.PinHash
	}

	if bcrypt.CompareHashAndPassword([]byte(pinHash), []byte(pin)) != nil {
		return "", model.Identity{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ident)
	if err != nil {
		return "", model.Identity{}, fmt.Errorf("create session: %w", err)
	}
	return token, ident, nil
}

// SetPin updates the calling account's own pin, dispatching on the role
// enum to the matching credential store.
func (s *AccountService) SetPin(ctx context.Context, ident model.Identity, newPin string) error {
	if !model.ValidPin(newPin) {
		return fmt.Errorf("%w: pin must be exactly 4 digits", ErrValidation)
	}

	store := s.credentialFor(ident.Role)
	if store == nil {
		return ErrUnauthorized
	}

	hash, err := hashPin(newPin)
	if err != nil {
		return err
	}

	if err := store.UpdatePin(ctx, ident.ID, hash); err != nil {
		if errors.Is(err, repository.ErrOwnerNotFound) || errors.Is(err, repository.ErrCustomerNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *AccountService) credentialFor(role model.Role) Credentialed {
	switch role {
	case model.RoleOwner:
		return s.ownerRepo
	case model.RoleCustomer:
		return s.customerRepo
	}
	return nil
}

// Logout destroys the session; unknown tokens are a no-op.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(token)
}

func hashPin(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}
