package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/payment/zalopay"
	"github.com/laptop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupPaymentServiceTest(t *testing.T) (*PaymentService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	orderSvc := NewOrderService(orderRepo, variantRepo, nil)

	gateway := &zalopay.Config{
		AppID:      "2553",
		Key1:       "key1-test",
		Key2:       "key2-test",
		GatewayURL: "https://sb-openapi.zalopay.vn",
	}
	return NewPaymentService(paymentRepo, orderRepo, orderSvc, gateway, nil), db
}

func seedPaymentOrder(t *testing.T, db *gorm.DB, amount int64) (*models.Order, *models.PaymentTransaction) {
	t.Helper()
	order := &models.Order{
		OrderNo:       fmt.Sprintf("ORDER-20260901-%06d", time.Now().UnixNano()%1000000),
		UserID:        1,
		Status:        constants.OrderStatusPending,
		TotalAmount:   models.NewMoneyFromInt(amount),
		PaymentMethod: constants.PaymentMethodZaloPay,
		ReceiverName:  "Pham Van D",
		ReceiverPhone: "0977123456",
		Address:       "12 Ly Thuong Kiet, Da Nang",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	txn := &models.PaymentTransaction{
		OrderID:    order.ID,
		AppTransID: "260901_" + order.OrderNo,
		Amount:     models.NewMoneyFromInt(amount),
		Status:     constants.PaymentStatusInitiated,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	return order, txn
}

func buildCallback(t *testing.T, key2, appTransID string, amount int64) (string, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"app_id":       2553,
		"app_trans_id": appTransID,
		"amount":       amount,
		"zp_trans_id":  260901000001234,
		"server_time":  time.Now().UnixMilli(),
		"channel":      38,
	})
	if err != nil {
		t.Fatalf("marshal callback failed: %v", err)
	}
	data := string(payload)
	return data, zalopay.Sign(key2, data)
}

func TestHandleCallbackMarksOrderPaid(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order, txn := seedPaymentOrder(t, db, 30_000_000)
	data, mac := buildCallback(t, "key2-test", txn.AppTransID, 30_000_000)

	ack := svc.HandleCallback(context.Background(), data, mac)
	if ack.ReturnCode != zalopay.AckSuccess {
		t.Fatalf("expected ack 1, got %d (%s)", ack.ReturnCode, ack.ReturnMessage)
	}

	var got models.Order
	db.First(&got, order.ID)
	if !got.IsPaid || got.PaidAt == nil {
		t.Fatalf("order must be paid with stamp, got %+v", got)
	}

	var gotTxn models.PaymentTransaction
	db.First(&gotTxn, txn.ID)
	if gotTxn.Status != constants.PaymentStatusSuccess {
		t.Fatalf("payment must be success, got %s", gotTxn.Status)
	}
	if gotTxn.CallbackAt == nil {
		t.Fatal("callback_at must be stamped")
	}
}

func TestHandleCallbackReplayIsNoOp(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order, txn := seedPaymentOrder(t, db, 30_000_000)
	data, mac := buildCallback(t, "key2-test", txn.AppTransID, 30_000_000)

	first := svc.HandleCallback(context.Background(), data, mac)
	if first.ReturnCode != zalopay.AckSuccess {
		t.Fatalf("first delivery failed: %+v", first)
	}
	var afterFirst models.Order
	db.First(&afterFirst, order.ID)
	stamp := *afterFirst.PaidAt

	second := svc.HandleCallback(context.Background(), data, mac)
	if second.ReturnCode != zalopay.AckSuccess {
		t.Fatalf("replay must ack success, got %+v", second)
	}

	var afterSecond models.Order
	db.First(&afterSecond, order.ID)
	if !afterSecond.PaidAt.Equal(stamp) {
		t.Fatalf("paid_at must keep first stamp: %v vs %v", afterSecond.PaidAt, stamp)
	}
}

func TestHandleCallbackTamperedData(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order, txn := seedPaymentOrder(t, db, 30_000_000)
	data, mac := buildCallback(t, "key2-test", txn.AppTransID, 30_000_000)

	// 任意一个字节被改动都必须判为验签失败
	tampered := []byte(data)
	tampered[len(tampered)/2] ^= 0x01

	ack := svc.HandleCallback(context.Background(), string(tampered), mac)
	if ack.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("expected ack -1, got %d", ack.ReturnCode)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.IsPaid {
		t.Fatal("tampered callback must not touch the order")
	}
}

func TestHandleCallbackWrongKey(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	_, txn := seedPaymentOrder(t, db, 30_000_000)
	data, _ := buildCallback(t, "key2-test", txn.AppTransID, 30_000_000)
	badMac := zalopay.Sign("attacker-key", data)

	ack := svc.HandleCallback(context.Background(), data, badMac)
	if ack.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("expected ack -1, got %d", ack.ReturnCode)
	}
}

func TestHandleCallbackUnknownTransaction(t *testing.T) {
	svc, _ := setupPaymentServiceTest(t)
	data, mac := buildCallback(t, "key2-test", "260901_ORDER-20260901-ZZZZZZ", 1_000_000)

	ack := svc.HandleCallback(context.Background(), data, mac)
	if ack.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("unknown transaction must not request retry, got %d", ack.ReturnCode)
	}
}

func TestHandleCallbackAmountMismatch(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order, txn := seedPaymentOrder(t, db, 30_000_000)
	data, mac := buildCallback(t, "key2-test", txn.AppTransID, 29_000_000)

	ack := svc.HandleCallback(context.Background(), data, mac)
	if ack.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("amount mismatch must not mark paid, got %d", ack.ReturnCode)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.IsPaid {
		t.Fatal("mismatched callback must not touch the order")
	}
}

func TestHandleCallbackCancelledOrder(t *testing.T) {
	svc, db := setupPaymentServiceTest(t)
	order, txn := seedPaymentOrder(t, db, 30_000_000)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	data, mac := buildCallback(t, "key2-test", txn.AppTransID, 30_000_000)

	// 订单已关闭：确认回调但不落支付标记，网关不再重试
	ack := svc.HandleCallback(context.Background(), data, mac)
	if ack.ReturnCode != zalopay.AckSuccess {
		t.Fatalf("closed order callback must ack success, got %d", ack.ReturnCode)
	}

	var got models.Order
	db.First(&got, order.ID)
	if got.IsPaid {
		t.Fatal("cancelled order must stay unpaid")
	}
}
