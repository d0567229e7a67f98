package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/khatapp/udhaar/internal/model"
	"github.com/khatapp/udhaar/internal/repository"
)

func TestLinkageService_AddCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown phone creates customer and link", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByPhone", ctx, "9876543210").Return(nil, repository.ErrCustomerNotFound)
		customerRepo.On("Create", ctx, mock.MatchedBy(func(c *model.Customer) bool {
			if c.ID == "" || c.Name != "Ravi" || c.Phone != "9876543210" {
				return false
			}
			// pin must be stored hashed, never plain
			return c.PinHash != nil &&
				bcrypt.CompareHashAndPassword([]byte(*c.PinHash), []byte("1234")) == nil
		})).Return(&model.Customer{ID: "cust-new", Name: "Ravi", Phone: "9876543210"}, nil)
		linkRepo.On("Create", ctx, mock.MatchedBy(func(l *model.OwnerCustomerLink) bool {
			return l.OwnerID == "owner-1" && l.CustomerID == "cust-new" && l.IsActive
		})).Return(&model.OwnerCustomerLink{ID: 1, OwnerID: "owner-1", CustomerID: "cust-new", IsActive: true}, nil)

		out, err := svc.AddCustomer(ctx, ownerIdent(), model.AddCustomerRequest{
			Name:  " Ravi ",
			Phone: " 9876543210 ",
			Pin:   "1234",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), out.LinkID)
		assert.True(t, out.IsActive)
		customerRepo.AssertExpectations(t)
		linkRepo.AssertExpectations(t)
	})

	t.Run("known phone reuses the customer record", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		existing := &model.Customer{ID: "cust-1", Name: "Ravi", Phone: "9876543210"}
		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByPhone", ctx, "9876543210").Return(existing, nil)
		linkRepo.On("GetByPair", ctx, "owner-2", "cust-1").Return(nil, repository.ErrLinkNotFound)
		linkRepo.On("Create", ctx, mock.MatchedBy(func(l *model.OwnerCustomerLink) bool {
			return l.OwnerID == "owner-2" && l.CustomerID == "cust-1"
		})).Return(&model.OwnerCustomerLink{ID: 2, OwnerID: "owner-2", CustomerID: "cust-1", IsActive: true}, nil)

		out, err := svc.AddCustomer(ctx, model.Identity{ID: "owner-2", Role: model.RoleOwner}, model.AddCustomerRequest{
			Name:  "Ravi",
			Phone: "9876543210",
		})
		require.NoError(t, err)
		assert.Equal(t, "cust-1", out.Customer.ID)
		customerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("same owner linking twice is a conflict", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		existing := &model.Customer{ID: "cust-1", Name: "Ravi", Phone: "9876543210"}
		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByPhone", ctx, "9876543210").Return(existing, nil)
		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").
			Return(&model.OwnerCustomerLink{ID: 1, OwnerID: "owner-1", CustomerID: "cust-1"}, nil)

		_, err := svc.AddCustomer(ctx, ownerIdent(), model.AddCustomerRequest{
			Name:  "Ravi",
			Phone: "9876543210",
		})
		assert.ErrorIs(t, err, ErrAlreadyLinked)
		linkRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("index violation on racing insert maps to conflict", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		existing := &model.Customer{ID: "cust-1", Name: "Ravi", Phone: "9876543210"}
		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByPhone", ctx, "9876543210").Return(existing, nil)
		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").Return(nil, repository.ErrLinkNotFound)
		linkRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateLink)

		_, err := svc.AddCustomer(ctx, ownerIdent(), model.AddCustomerRequest{
			Name:  "Ravi",
			Phone: "9876543210",
		})
		assert.ErrorIs(t, err, ErrAlreadyLinked)
	})

	t.Run("index violation on racing customer insert links the winner", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		winner := &model.Customer{ID: "cust-1", Name: "Ravi", Phone: "9876543210"}
		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByPhone", ctx, "9876543210").
			Return(nil, repository.ErrCustomerNotFound).Once()
		customerRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrPhoneExists)
		customerRepo.On("GetByPhone", ctx, "9876543210").Return(winner, nil)
		linkRepo.On("Create", ctx, mock.MatchedBy(func(l *model.OwnerCustomerLink) bool {
			return l.OwnerID == "owner-1" && l.CustomerID == "cust-1"
		})).Return(&model.OwnerCustomerLink{ID: 3, OwnerID: "owner-1", CustomerID: "cust-1", IsActive: true}, nil)

		out, err := svc.AddCustomer(ctx, ownerIdent(), model.AddCustomerRequest{
			Name:  "Ravi",
			Phone: "9876543210",
		})
		require.NoError(t, err)
		assert.Equal(t, "cust-1", out.Customer.ID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		svc := NewLinkageService(new(MockCustomerRepository), new(MockLinkRepository), new(MockTransactionRepository))

		cases := []model.AddCustomerRequest{
			{Name: "", Phone: "9876543210"},
			{Name: "Ravi", Phone: "12345"},
			{Name: "Ravi", Phone: "98765432ab"},
			{Name: "Ravi", Phone: "9876543210", Pin: "12"},
		}
		for _, p := range cases {
			_, err := svc.AddCustomer(ctx, ownerIdent(), p)
			assert.ErrorIs(t, err, ErrValidation)
		}
	})

	t.Run("customers cannot add customers", func(t *testing.T) {
		svc := NewLinkageService(new(MockCustomerRepository), new(MockLinkRepository), new(MockTransactionRepository))

		_, err := svc.AddCustomer(ctx, customerIdent(), model.AddCustomerRequest{
			Name:  "Ravi",
			Phone: "9876543210",
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestLinkageService_ToggleLink(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the active flag", func(t *testing.T) {
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(new(MockCustomerRepository), linkRepo, new(MockTransactionRepository))

		linkRepo.On("GetByID", ctx, int64(5)).
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-1", CustomerID: "cust-1", IsActive: true}, nil)
		linkRepo.On("SetActive", ctx, int64(5), false).Return(nil)

		link, err := svc.ToggleLink(ctx, ownerIdent(), 5)
		require.NoError(t, err)
		assert.False(t, link.IsActive)
		linkRepo.AssertExpectations(t)
	})

	t.Run("another owner's link is forbidden", func(t *testing.T) {
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(new(MockCustomerRepository), linkRepo, new(MockTransactionRepository))

		linkRepo.On("GetByID", ctx, int64(5)).
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-2", CustomerID: "cust-1", IsActive: true}, nil)

		_, err := svc.ToggleLink(ctx, ownerIdent(), 5)
		assert.ErrorIs(t, err, ErrForbidden)
		linkRepo.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing link is not found", func(t *testing.T) {
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(new(MockCustomerRepository), linkRepo, new(MockTransactionRepository))

		linkRepo.On("GetByID", ctx, int64(99)).Return(nil, repository.ErrLinkNotFound)

		_, err := svc.ToggleLink(ctx, ownerIdent(), 99)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLinkageService_DeleteLink(t *testing.T) {
	ctx := context.Background()

	t.Run("last link also removes the customer", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		linkRepo.On("GetByID", ctx, int64(5)).
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-1", CustomerID: "cust-1"}, nil)
		linkRepo.On("Delete", ctx, int64(5)).Return(nil)
		linkRepo.On("CountByCustomer", ctx, "cust-1").Return(int64(0), nil)
		customerRepo.On("Delete", ctx, "cust-1").Return(nil)

		require.NoError(t, svc.DeleteLink(ctx, ownerIdent(), 5))
		customerRepo.AssertExpectations(t)
		linkRepo.AssertExpectations(t)
	})

	t.Run("customer linked elsewhere survives", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		linkRepo.On("GetByID", ctx, int64(5)).
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-1", CustomerID: "cust-1"}, nil)
		linkRepo.On("Delete", ctx, int64(5)).Return(nil)
		linkRepo.On("CountByCustomer", ctx, "cust-1").Return(int64(1), nil)

		require.NoError(t, svc.DeleteLink(ctx, ownerIdent(), 5))
		customerRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestLinkageService_UpdatePhone(t *testing.T) {
	ctx := context.Background()

	t.Run("updates after the uniqueness re-check", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByID", ctx, "cust-1").
			Return(&model.Customer{ID: "cust-1", Phone: "9876543210"}, nil)
		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-1", CustomerID: "cust-1"}, nil)
		customerRepo.On("ExistsWithPhone", ctx, "9998887776", "cust-1").Return(false, nil)
		customerRepo.On("UpdatePhone", ctx, "cust-1", "9998887776").Return(nil)

		require.NoError(t, svc.UpdatePhone(ctx, ownerIdent(), "cust-1", " 9998887776 "))
		customerRepo.AssertExpectations(t)
	})

	t.Run("taken number is a conflict", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByID", ctx, "cust-1").
			Return(&model.Customer{ID: "cust-1", Phone: "9876543210"}, nil)
		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").
			Return(&model.OwnerCustomerLink{ID: 5, OwnerID: "owner-1", CustomerID: "cust-1"}, nil)
		customerRepo.On("ExistsWithPhone", ctx, "9998887776", "cust-1").Return(true, nil)

		err := svc.UpdatePhone(ctx, ownerIdent(), "cust-1", "9998887776")
		assert.ErrorIs(t, err, ErrPhoneTaken)
		customerRepo.AssertNotCalled(t, "UpdatePhone", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unlinked customer is forbidden", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		svc := NewLinkageService(customerRepo, linkRepo, new(MockTransactionRepository))

		customerRepo.On("WithinTransaction", ctx, mock.Anything).Return(nil)
		customerRepo.On("GetByID", ctx, "cust-1").
			Return(&model.Customer{ID: "cust-1", Phone: "9876543210"}, nil)
		linkRepo.On("GetByPair", ctx, "owner-1", "cust-1").Return(nil, repository.ErrLinkNotFound)

		err := svc.UpdatePhone(ctx, ownerIdent(), "cust-1", "9998887776")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("invalid phone is rejected before any read", func(t *testing.T) {
		svc := NewLinkageService(new(MockCustomerRepository), new(MockLinkRepository), new(MockTransactionRepository))

		err := svc.UpdatePhone(ctx, ownerIdent(), "cust-1", "123")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestLinkageService_ListCustomers(t *testing.T) {
	ctx := context.Background()

	t.Run("returns links with per-shop balances", func(t *testing.T) {
		customerRepo := new(MockCustomerRepository)
		linkRepo := new(MockLinkRepository)
		txnRepo := new(MockTransactionRepository)
		svc := NewLinkageService(customerRepo, linkRepo, txnRepo)

		ownerID := "owner-1"
		linkRepo.On("ListByOwner", ctx, "owner-1").Return([]*model.OwnerCustomerLink{
			{ID: 1, OwnerID: "owner-1", CustomerID: "cust-1", IsActive: true},
			{ID: 2, OwnerID: "owner-1", CustomerID: "cust-2", IsActive: false},
		}, nil)
		customerRepo.On("GetByID", ctx, "cust-1").Return(&model.Customer{ID: "cust-1", Name: "Ravi"}, nil)
		customerRepo.On("GetByID", ctx, "cust-2").Return(&model.Customer{ID: "cust-2", Name: "Meena"}, nil)
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-1", OwnerID: &ownerID}).
			Return([]*model.Transaction{{Type: "credit", Amount: 120}, {Type: "payment", Amount: 20}}, int64(2), nil)
		txnRepo.On("List", ctx, model.TransactionFilter{CustomerID: "cust-2", OwnerID: &ownerID}).
			Return([]*model.Transaction{}, int64(0), nil)

		out, err := svc.ListCustomers(ctx, ownerIdent())
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, 100.0, out[0].Balance)
		assert.True(t, out[0].IsActive)
		assert.Equal(t, 0.0, out[1].Balance)
		assert.False(t, out[1].IsActive)
	})

	t.Run("customers cannot list a book", func(t *testing.T) {
		svc := NewLinkageService(new(MockCustomerRepository), new(MockLinkRepository), new(MockTransactionRepository))

		_, err := svc.ListCustomers(ctx, customerIdent())
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
