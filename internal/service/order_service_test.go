package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewVariantRepository(db),
		nil,
	), db
}

func seedOrder(t *testing.T, db *gorm.DB, status string, isPaid bool) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       fmt.Sprintf("ORDER-20260901-%06d", time.Now().UnixNano()%1000000),
		UserID:        1,
		Status:        status,
		IsPaid:        isPaid,
		TotalAmount:   models.NewMoneyFromInt(15_000_000),
		PaymentMethod: constants.PaymentMethodCOD,
		ReceiverName:  "Le Van C",
		ReceiverPhone: "0987654321",
		Address:       "78 Tran Hung Dao, Ha Noi",
	}
	if isPaid {
		now := time.Now()
		order.PaidAt = &now
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestSetStatusForwardFlow(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPending, true)

	for _, next := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusShipping,
		constants.OrderStatusDelivered,
	} {
		got, err := svc.SetStatus(order.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if got.Status != next {
			t.Fatalf("expected %s, got %s", next, got.Status)
		}
	}
}

func TestSetStatusDeliveredRequiresPaid(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusShipping, false)

	_, err := svc.SetStatus(order.ID, constants.OrderStatusDelivered)
	if !errors.Is(err, ErrOrderNotPaid) {
		t.Fatalf("expected ErrOrderNotPaid, got %v", err)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.Status != constants.OrderStatusShipping {
		t.Fatalf("status must be unchanged, got %s", got.Status)
	}
}

func TestSetStatusRejectsBackward(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusShipping, true)

	for _, back := range []string{constants.OrderStatusPending, constants.OrderStatusConfirmed} {
		if _, err := svc.SetStatus(order.ID, back); !errors.Is(err, ErrOrderStateConflict) {
			t.Fatalf("expected ErrOrderStateConflict for %s, got %v", back, err)
		}
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPending, false)

	if _, err := svc.SetStatus(order.ID, "lost_in_transit"); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got %v", err)
	}
}

func TestSetStatusTerminalRejectsAll(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	for _, terminal := range []string{
		constants.OrderStatusDelivered,
		constants.OrderStatusCancelled,
		constants.OrderStatusReturned,
	} {
		order := seedOrder(t, db, terminal, false)
		if _, err := svc.SetStatus(order.ID, constants.OrderStatusConfirmed); !errors.Is(err, ErrOrderStateTerminal) {
			t.Fatalf("terminal %s must reject transitions, got %v", terminal, err)
		}
	}
}

func TestSetStatusCancelForcesUnpaidAndReleasesStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	variant := seedVariant(t, db, "ORD-CANCEL", 15_000_000, 0)
	order := seedOrder(t, db, constants.OrderStatusConfirmed, true)
	item := models.OrderItem{
		OrderID:     order.ID,
		VariantID:   variant.ID,
		ProductName: "MacBook Air M3",
		UnitPrice:   models.NewMoneyFromInt(15_000_000),
		Quantity:    2,
		TotalPrice:  models.NewMoneyFromInt(30_000_000),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}

	got, err := svc.SetStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}
	if got.IsPaid {
		t.Fatal("cancel must force is_paid=false")
	}

	var v models.ProductVariant
	db.First(&v, variant.ID)
	if v.Stock != 2 {
		t.Fatalf("expected stock released to 2, got %d", v.Stock)
	}
}

func TestSetStatusReturnedOnlyFromShipping(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	pending := seedOrder(t, db, constants.OrderStatusPending, false)
	if _, err := svc.SetStatus(pending.ID, constants.OrderStatusReturned); !errors.Is(err, ErrOrderStateConflict) {
		t.Fatalf("returned from pending must conflict, got %v", err)
	}

	shipping := seedOrder(t, db, constants.OrderStatusShipping, true)
	got, err := svc.SetStatus(shipping.ID, constants.OrderStatusReturned)
	if err != nil {
		t.Fatalf("return from shipping failed: %v", err)
	}
	if got.IsPaid {
		t.Fatal("return must force is_paid=false")
	}
}

func TestSetPaidStampsPaidAtOnce(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPending, false)

	first, err := svc.SetPaid(order.ID, true)
	if err != nil {
		t.Fatalf("set paid failed: %v", err)
	}
	if !first.IsPaid || first.PaidAt == nil {
		t.Fatalf("expected paid with stamp, got %+v", first)
	}
	stamp := *first.PaidAt

	// 重复置位为无动作成功，paid_at 不变
	second, err := svc.SetPaid(order.ID, true)
	if err != nil {
		t.Fatalf("replay set paid failed: %v", err)
	}
	if second.PaidAt == nil || !second.PaidAt.Equal(stamp) {
		t.Fatalf("paid_at must keep first stamp: %v vs %v", second.PaidAt, stamp)
	}
}

func TestSetPaidRejectedOnCancelled(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	for _, status := range []string{constants.OrderStatusCancelled, constants.OrderStatusReturned} {
		order := seedOrder(t, db, status, false)
		if _, err := svc.SetPaid(order.ID, true); !errors.Is(err, ErrOrderStateConflict) {
			t.Fatalf("paid=true on %s must conflict, got %v", status, err)
		}
	}
}

func TestSetPaidUnset(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	order := seedOrder(t, db, constants.OrderStatusPending, true)

	got, err := svc.SetPaid(order.ID, false)
	if err != nil {
		t.Fatalf("unset paid failed: %v", err)
	}
	if got.IsPaid || got.PaidAt != nil {
		t.Fatalf("expected unpaid without stamp, got %+v", got)
	}
}

func TestCanTransitOrderStatusTable(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.OrderStatusPending, constants.OrderStatusConfirmed, true},
		{constants.OrderStatusPending, constants.OrderStatusShipping, true},
		{constants.OrderStatusPending, constants.OrderStatusCancelled, true},
		{constants.OrderStatusPending, constants.OrderStatusReturned, false},
		{constants.OrderStatusConfirmed, constants.OrderStatusPending, false},
		{constants.OrderStatusShipping, constants.OrderStatusReturned, true},
		{constants.OrderStatusShipping, constants.OrderStatusConfirmed, false},
		{constants.OrderStatusDelivered, constants.OrderStatusCancelled, false},
		{constants.OrderStatusCancelled, constants.OrderStatusPending, false},
		{constants.OrderStatusReturned, constants.OrderStatusShipping, false},
		{constants.OrderStatusPending, constants.OrderStatusPending, false},
		{constants.OrderStatusPending, "unknown", false},
	}
	for _, tc := range cases {
		if got := CanTransitOrderStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitOrderStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
