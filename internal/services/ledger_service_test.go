package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
)

func ownerIdent() model.Identity {
	return model.Identity{ID: "owner-1", Role: model.RoleOwner, Name: "Asha Stores"}
}

func customerIdent() model.Identity {
	return model.Identity{ID: "cust-1", Role: model.RoleCustomer, Name: "Ravi"}
}

func TestComputeBalance(t *testing.T) {
	t.Run("credits add and payments subtract", func(t *testing.T) {
		txns := []*model.Transaction{
			{Type: "credit", Amount: 100},
			{Type: "payment", Amount: 30},
		}
		assert.Equal(t, 70.0, ComputeBalance(txns))
	})

	t.Run("empty history is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ComputeBalance(nil))
	})

	t.Run("legacy casing still counts as payment", func(t *testing.T) {
		txns := []*model.Transaction{
			{Type: "PAYMENT", Amount: 10},
		}
		assert.Equal(t, -10.0, ComputeBalance(txns))
	})

	t.Run("order does not matter", func(t *testing.T) {
		a := []*model.Transaction{
			{Type: "credit", Amount: 50},
			{Type: "payment", Amount: 20},
			{Type: "credit", Amount: 5},
		}
		b := []*model.Transaction{a[2], a[0], a[1]}
		assert.Equal(t, ComputeBalance(a), ComputeBalance(b))
	})
}

func TestLedgerService_Record(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes type casing at the write boundary", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLedgerService(txnRepo, linkRepo)

		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").
			Return(&model.OwnerCustomerLink{ID: 1, OwnerID: "owner-1", CustomerID: "cust-1", IsActive: true}, nil)
		txnRepo.On("Create", ctx, mock.MatchedBy(func(txn *model.Transaction) bool {
			return txn.Type == "credit" && txn.Amount == 250 && txn.Note == "groceries"
		})).Return(&model.Transaction{ID: 7, OwnerID: "owner-1", CustomerID: "cust-1", Type: "credit", Amount: 250, Note: "groceries"}, nil)

		txn, err := svc.Record(ctx, ownerIdent(), model.TransactionCreateRequest{
			CustomerID: "cust-1",
			Type:       "  CREDIT ",
			Amount:     250,
			Note:       "  groceries  ",
		})
		require.NoError(t, err)
		assert.Equal(t, "credit", txn.Type)
		txnRepo.AssertExpectations(t)
		linkRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc := NewLedgerService(new(MockTransactionRepository), new(MockLinkRepository))

		_, err := svc.Record(ctx, ownerIdent(), model.TransactionCreateRequest{
			CustomerID: "cust-1",
			Type:       "loan",
			Amount:     10,
		})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects negative and non-finite amounts", func(t *testing.T) {
		svc := NewLedgerService(new(MockTransactionRepository), new(MockLinkRepository))

		for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
			_, err := svc.Record(ctx, ownerIdent(), model.TransactionCreateRequest{
				CustomerID: "cust-1",
				Type:       "credit",
				Amount:     amount,
			})
			assert.ErrorIs(t, err, ErrValidation)
		}
	})

	t.Run("unlinked customer is not found", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLedgerService(txnRepo, linkRepo)

		linkRepo.On("GetByPair", ctx, "owner-1", "ghost").
			Return(nil, repository.ErrLinkNotFound)

		_, err := svc.Record(ctx, ownerIdent(), model.TransactionCreateRequest{
			CustomerID: "ghost",
			Type:       "payment",
			Amount:     5,
		})
		assert.ErrorIs(t, err, ErrNotFound)
		txnRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("customers cannot record", func(t *testing.T) {
		svc := NewLedgerService(new(MockTransactionRepository), new(MockLinkRepository))

		_, err := svc.Record(ctx, customerIdent(), model.TransactionCreateRequest{
			CustomerID: "cust-1",
			Type:       "credit",
			Amount:     10,
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestLedgerService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("owner is pinned to own shop scope", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		svc := NewLedgerService(txnRepo, new(MockLinkRepository))

		ownerID := "owner-1"
		full := []*model.Transaction{
			{Type: "credit", Amount: 100},
			{Type: "payment", Amount: 40},
		}
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-1", OwnerID: &ownerID}).
			Return(full, int64(2), nil).Once()
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-1", OwnerID: &ownerID, Limit: defaultPageSize, Desc: true}).
			Return(full, int64(2), nil).Once()

		items, total, balance, err := svc.List(ctx, ownerIdent(), model.TransactionFilter{CustomerID: "cust-1", Desc: true})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, 60.0, balance)
		txnRepo.AssertExpectations(t)
	})

	t.Run("customer may read own cross-shop history", func(t *testing.T) {
		txnRepo := new(MockTransactionRepository)
		svc := NewLedgerService(txnRepo, new(MockLinkRepository))

		full := []*model.Transaction{
			{OwnerID: "owner-1", Type: "credit", Amount: 100},
			{OwnerID: "owner-2", Type: "credit", Amount: 25},
		}
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-1"}).
			Return(full, int64(2), nil).Once()
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-1", Limit: defaultPageSize}).
			Return(full, int64(2), nil).Once()

		_, _, balance, err := svc.List(ctx, customerIdent(), model.TransactionFilter{CustomerID: "cust-1"})
		require.NoError(t, err)
		assert.Equal(t, 125.0, balance)
	})

	t.Run("customer cannot read another customer's history", func(t *testing.T) {
		svc := NewLedgerService(new(MockTransactionRepository), new(MockLinkRepository))

		_, _, _, err := svc.List(ctx, customerIdent(), model.TransactionFilter{CustomerID: "cust-2"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("customer id is required", func(t *testing.T) {
		svc := NewLedgerService(new(MockTransactionRepository), new(MockLinkRepository))

		_, _, _, err := svc.List(ctx, ownerIdent(), model.TransactionFilter{})
		assert.ErrorIs(t, err, ErrValidation)
	})
}
