package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/payment/zalopay"
	"github.com/laptop-next/internal/provider"
	"github.com/laptop-next/internal/queue"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	gateway := &zalopay.Config{
		AppID:      "2553",
		Key1:       "key1",
		Key2:       "key2",
		GatewayURL: "https://sb-openapi.zalopay.vn",
	}
	orderSvc := service.NewOrderService(orderRepo, repository.NewVariantRepository(db), nil)
	paymentSvc := service.NewPaymentService(paymentRepo, orderRepo, orderSvc, gateway, nil)

	container := &provider.Container{
		OrderRepo:      orderRepo,
		PaymentRepo:    paymentRepo,
		OrderService:   orderSvc,
		PaymentService: paymentSvc,
	}
	return NewConsumer(container), db
}

func TestHandleOrderStatusNotify(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	order := &models.Order{
		OrderNo:       "ORDER-20260901-AAAAAA",
		UserID:        7,
		Status:        "shipping",
		TotalAmount:   models.NewMoneyFromInt(25_000_000),
		PaymentMethod: "cod",
		ReceiverName:  "Nguyen Van A",
		ReceiverPhone: "0912345678",
		Address:       "12 Ly Thuong Kiet, Ha Noi",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	payload, _ := json.Marshal(queue.OrderStatusNotifyPayload{OrderID: order.ID, Status: "shipping"})
	task := asynq.NewTask(queue.TaskOrderStatusNotify, payload)
	if err := consumer.handleOrderStatusNotify(context.Background(), task); err != nil {
		t.Fatalf("handle notify failed: %v", err)
	}

	// 订单不存在时任务按完成处理，不触发重试
	missing, _ := json.Marshal(queue.OrderStatusNotifyPayload{OrderID: 9999, Status: "shipping"})
	if err := consumer.handleOrderStatusNotify(context.Background(), asynq.NewTask(queue.TaskOrderStatusNotify, missing)); err != nil {
		t.Fatalf("missing order should not fail the task: %v", err)
	}
}

func TestHandleOrderStatusNotifyBadPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := asynq.NewTask(queue.TaskOrderStatusNotify, []byte("not-json"))
	if err := consumer.handleOrderStatusNotify(context.Background(), task); err == nil {
		t.Fatalf("bad payload should fail the task")
	}
}

func TestHandlePaymentReconcileUnknownTransaction(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	payload, _ := json.Marshal(queue.PaymentReconcilePayload{AppTransID: "240901_UNKNOWN"})
	task := asynq.NewTask(queue.TaskPaymentReconcile, payload)
	// 流水不存在说明下单未落库，重试也无意义
	if err := consumer.handlePaymentReconcile(context.Background(), task); err != nil {
		t.Fatalf("unknown transaction should not fail the task: %v", err)
	}
}

func TestHandlePaymentReconcileEmptyPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	payload, _ := json.Marshal(queue.PaymentReconcilePayload{})
	task := asynq.NewTask(queue.TaskPaymentReconcile, payload)
	if err := consumer.handlePaymentReconcile(context.Background(), task); err != nil {
		t.Fatalf("empty payload should be skipped: %v", err)
	}
}
