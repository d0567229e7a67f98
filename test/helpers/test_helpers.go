package helpers

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khatapp/udhaar/internal/repository"
	"github.com/khatapp/udhaar/pkg/pg"
	"github.com/khatapp/udhaar/pkg/redis"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.OwnerEntity{},
		&repository.CustomerEntity{},
		&repository.LinkEntity{},
		&repository.TransactionEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// unique connection name per test, the adapter registry is global
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func HashPin(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func CreateTestOwner(t *testing.T, db *pg.DB, name, phone, pin string) *repository.OwnerEntity {
	ctx := context.Background()
	owner := &repository.OwnerEntity{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
		Pin:   HashPin(t, pin),
	}
	err := db.Write(ctx).Create(owner).Error
	require.NoError(t, err)
	return owner
}

func CreateTestCustomer(t *testing.T, db *pg.DB, name, phone string, pin *string) *repository.CustomerEntity {
	ctx := context.Background()
	customer := &repository.CustomerEntity{
		ID:    uuid.NewString(),
		Name:  name,
		Phone: phone,
	}
	if pin != nil {
		h := HashPin(t, *pin)
		customer.Pin = &h
	}
	err := db.Write(ctx).Create(customer).Error
	require.NoError(t, err)
	return customer
}

func CreateTestLink(t *testing.T, db *pg.DB, ownerID, customerID string, active bool) *repository.LinkEntity {
	ctx := context.Background()
	link := &repository.LinkEntity{
		OwnerID:    ownerID,
		CustomerID: customerID,
		IsActive:   active,
	}
	err := db.Write(ctx).Create(link).Error
	require.NoError(t, err)
	return link
}

func CreateTestTransaction(t *testing.T, db *pg.DB, ownerID, customerID, txnType string, amount float64) *repository.TransactionEntity {
	ctx := context.Background()
	txn := &repository.TransactionEntity{
		OwnerID:    ownerID,
		CustomerID: customerID,
		Type:       txnType,
		Amount:     amount,
	}
	err := db.Write(ctx).Create(txn).Error
	require.NoError(t, err)
	return txn
}

func RandomPhone() string {
	digits := make([]byte, 10)
	digits[0] = byte('6' + rand.Intn(4))
	for i := 1; i < 10; i++ {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
