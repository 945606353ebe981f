package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepositoryTest(t *testing.T) (*GormOrderRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderRepository(db), db
}

func createTestOrder(t *testing.T, repo *GormOrderRepository, orderNo, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       orderNo,
		UserID:        1,
		Status:        status,
		TotalAmount:   models.NewMoneyFromInt(30_000_000),
		PaymentMethod: constants.PaymentMethodCOD,
		ReceiverName:  "Nguyen Van A",
		ReceiverPhone: "0901234567",
		Address:       "123 Le Loi, Q1, TP.HCM",
	}
	items := []models.OrderItem{
		{
			VariantID:   1,
			ProductName: "Dell XPS 13",
			UnitPrice:   models.NewMoneyFromInt(15_000_000),
			Quantity:    2,
			TotalPrice:  models.NewMoneyFromInt(30_000_000),
		},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func TestOrderRepositoryCreatePersistsItems(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-AB12CD", constants.OrderStatusPending)

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got == nil {
		t.Fatal("order not found")
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got.Items))
	}
	if got.Items[0].OrderID != order.ID {
		t.Fatalf("item not bound to order: %d", got.Items[0].OrderID)
	}
}

func TestOrderRepositoryUpdateStatusIf(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-EF34GH", constants.OrderStatusPending)

	affected, err := repo.UpdateStatusIf(order.ID, constants.OrderStatusPending, constants.OrderStatusConfirmed, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	// 前置状态不匹配时更新应落空
	affected, err = repo.UpdateStatusIf(order.ID, constants.OrderStatusPending, constants.OrderStatusShipping, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusConfirmed {
		t.Fatalf("unexpected status: %s", got.Status)
	}
}

func TestOrderRepositoryMarkPaidIfIdempotent(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-IJ56KL", constants.OrderStatusPending)

	now := time.Now().UTC().Truncate(time.Second)
	affected, err := repo.MarkPaidIf(order.ID, now)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	// 二次标记应返回 0 行
	affected, err = repo.MarkPaidIf(order.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected on replay, got %d", affected)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if !got.IsPaid {
		t.Fatal("order should be paid")
	}
	if got.PaidAt == nil || !got.PaidAt.Equal(now) {
		t.Fatalf("paid_at should keep first callback time, got %v", got.PaidAt)
	}
}

func TestOrderRepositoryGetByCheckoutKey(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-MN78OP", constants.OrderStatusPending)
	key := "ck-123"
	order.CheckoutKey = &key
	if err := repo.db.Save(order).Error; err != nil {
		t.Fatalf("save order failed: %v", err)
	}

	got, err := repo.GetByCheckoutKey(1, "ck-123")
	if err != nil {
		t.Fatalf("get by checkout key failed: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d, got %+v", order.ID, got)
	}

	missing, err := repo.GetByCheckoutKey(1, "ck-other")
	if err != nil {
		t.Fatalf("get by checkout key failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown key, got %+v", missing)
	}
}

func TestOrderRepositoryMarkPaidIfRejectsCancelled(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-QR90ST", constants.OrderStatusPending)

	// 回调落地前订单已被取消
	affected, err := repo.UpdateStatusIf(order.ID, constants.OrderStatusPending, constants.OrderStatusCancelled, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	affected, err = repo.MarkPaidIf(order.ID, time.Now())
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("cancelled order must not be markable paid, got %d rows", affected)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.IsPaid {
		t.Fatal("cancelled order must stay unpaid")
	}
	if got.Status != constants.OrderStatusCancelled {
		t.Fatalf("unexpected status: %s", got.Status)
	}

	returned := createTestOrder(t, repo, "ORDER-20260901-UV12WX", constants.OrderStatusReturned)
	affected, err = repo.MarkPaidIf(returned.ID, time.Now())
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("returned order must not be markable paid, got %d rows", affected)
	}
}

func TestOrderRepositoryUpdateStatusIfDeliveredRequiresPaid(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)
	order := createTestOrder(t, repo, "ORDER-20260901-YZ34AB", constants.OrderStatusShipping)

	// 未支付订单不得完成妥投
	affected, err := repo.UpdateStatusIf(order.ID, constants.OrderStatusShipping, constants.OrderStatusDelivered, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("unpaid order must not be deliverable, got %d rows", affected)
	}

	got, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusShipping {
		t.Fatalf("unexpected status: %s", got.Status)
	}

	if _, err := repo.MarkPaidIf(order.ID, time.Now()); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	affected, err = repo.UpdateStatusIf(order.ID, constants.OrderStatusShipping, constants.OrderStatusDelivered, nil)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("paid order must be deliverable, got %d rows", affected)
	}
}

func TestOrderRepositoryCheckoutKeyUniquePerUser(t *testing.T) {
	repo, _ := setupOrderRepositoryTest(t)

	newOrder := func(orderNo string, userID uint, key *string) *models.Order {
		return &models.Order{
			OrderNo:       orderNo,
			UserID:        userID,
			Status:        constants.OrderStatusPending,
			TotalAmount:   models.NewMoneyFromInt(10_000_000),
			PaymentMethod: constants.PaymentMethodCOD,
			ReceiverName:  "Nguyen Van A",
			ReceiverPhone: "0901234567",
			Address:       "123 Le Loi, Q1, TP.HCM",
			CheckoutKey:   key,
		}
	}
	items := func() []models.OrderItem {
		return []models.OrderItem{{
			VariantID:   1,
			ProductName: "Dell XPS 13",
			UnitPrice:   models.NewMoneyFromInt(10_000_000),
			Quantity:    1,
			TotalPrice:  models.NewMoneyFromInt(10_000_000),
		}}
	}

	key := "ck-dup"
	if err := repo.Create(newOrder("ORDER-20260901-CD56EF", 1, &key), items()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	// 同一用户重复携带同一键撞唯一索引
	if err := repo.Create(newOrder("ORDER-20260901-GH78IJ", 1, &key), items()); err == nil {
		t.Fatal("duplicate (user, checkout_key) must be rejected")
	}
	// 不同用户可复用同一键
	if err := repo.Create(newOrder("ORDER-20260901-KL90MN", 2, &key), items()); err != nil {
		t.Fatalf("other user with same key failed: %v", err)
	}
	// 未携带键的订单互不冲突
	if err := repo.Create(newOrder("ORDER-20260901-OP12QR", 1, nil), items()); err != nil {
		t.Fatalf("nil key create failed: %v", err)
	}
	if err := repo.Create(newOrder("ORDER-20260901-ST34UV", 1, nil), items()); err != nil {
		t.Fatalf("second nil key create failed: %v", err)
	}
}
