package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
	"github.com/khatapp/udhaar/pkg/prom"
)

const defaultPageSize = 50

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

// LedgerService appends immutable ledger entries and derives running
// balances from them.
type LedgerService struct {
	txnRepo  TransactionRepository
	linkRepo LinkRepository
}

func NewLedgerService(txnRepo TransactionRepository, linkRepo LinkRepository) *LedgerService {
	return &LedgerService{
		txnRepo:  txnRepo,
		linkRepo: linkRepo,
	}
}

// Record appends one entry to the calling owner's ledger with a customer.
// The type is normalized to the closed enum at this write boundary;
// nothing downstream depends on the caller's casing.
func (s *LedgerService) Record(ctx context.Context, ident model.Identity, p model.TransactionCreateRequest) (*model.Transaction, error) {
	if !ident.IsOwner() {
		return nil, ErrForbidden
	}

	txnType, err := model.ParseTransactionType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if p.Amount < 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return nil, fmt.Errorf("%w: amount must be a non-negative number", ErrValidation)
	}
	if p.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}

	// entries live inside an (owner, customer) relationship
	if _, err := s.linkRepo.GetByPair(ctx, ident.ID, p.CustomerID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	txn, err := s.txnRepo.Create(ctx, &model.Transaction{
		OwnerID:    ident.ID,
		CustomerID: p.CustomerID,
		Type:       string(txnType),
		Amount:     p.Amount,
		Note:       strings.TrimSpace(p.Note),
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	prom.ObserveTransactionRecorded(string(txnType))
	return txn, nil
}

// List returns a page of ledger entries plus the balance over the whole
// filtered history. Owners are always pinned to their own shop's scope;
// customers may read their own entries either per shop or across shops.
func (s *LedgerService) List(ctx context.Context, ident model.Identity, f model.TransactionFilter) ([]*model.Transaction, int64, float64, error) {
	switch {
	case ident.IsOwner():
		ownerID := ident.ID
		f.OwnerID = &ownerID
	case ident.IsCustomer():
		if f.CustomerID != ident.ID {
			return nil, 0, 0, ErrForbidden
		}
	default:
		return nil, 0, 0, ErrUnauthorized
	}
	if f.CustomerID == "" {
		return nil, 0, 0, fmt.Errorf("%w: customer_id is required", ErrValidation)
	}

	start := time.Now()

	// balance folds the full history regardless of the display page
	full, _, err := s.txnRepo.List(ctx, model.TransactionFilter{
		CustomerID: f.CustomerID,
		OwnerID:    f.OwnerID,
	})
	if err != nil {
		return nil, 0, 0, err
	}
	balance := ComputeBalance(full)

	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	items, total, err := s.txnRepo.List(ctx, f)
	if err != nil {
		return nil, 0, 0, err
	}

	prom.ObserveBalanceQueryDuration(time.Since(start).Seconds())
	return items, total, balance, nil
}

// ComputeBalance folds a transaction sequence into a signed total:
// payments subtract, everything else adds. The fold is commutative, so
// input order does not matter. Type comparison stays case-insensitive to
// tolerate rows written before enum normalization.
func ComputeBalance(txns []*model.Transaction) float64 {
	var total float64
	for _, txn := range txns {
		if model.IsPayment(txn.Type) {
			total -= txn.Amount
		} else {
			total += txn.Amount
		}
	}
	return total
}
