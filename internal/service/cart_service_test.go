package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	svc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewVariantRepository(db),
	)
	return svc, db
}

func seedVariant(t *testing.T, db *gorm.DB, sku string, price int64, stock int) models.ProductVariant {
	t.Helper()
	product := models.Product{
		Name:     "MacBook Air M3",
		Slug:     "macbook-air-m3-" + sku,
		Images:   models.StringArray{"https://cdn.example.com/mba.jpg"},
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variant := models.ProductVariant{
		ProductID:      product.ID,
		SKU:            sku,
		AttributesJSON: models.JSON{"ram": "16GB", "ssd": "512GB"},
		PriceAmount:    models.NewMoneyFromInt(price),
		Stock:          stock,
		IsActive:       true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func TestCartAddItemAccumulatesQuantity(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "MBA-16-512", 28_990_000, 10)

	for _, qty := range []int{1, 2, 3} {
		if err := svc.AddItem(AddCartItemInput{UserID: 7, VariantID: variant.ID, Quantity: qty}); err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}

	cart, err := svc.Get(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected single line item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", cart.Items[0].Quantity)
	}
	want := decimal.NewFromInt(28_990_000).Mul(decimal.NewFromInt(6))
	if !cart.TotalAmount.Decimal.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, cart.TotalAmount.String())
	}
}

func TestCartAddItemSnapshotsPrice(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "MBA-24-1T", 35_000_000, 5)

	if err := svc.AddItem(AddCartItemInput{UserID: 8, VariantID: variant.ID, Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	// 目录调价不影响已入车条目
	if err := db.Model(&models.ProductVariant{}).Where("id = ?", variant.ID).
		Update("price_amount", models.NewMoneyFromInt(40_000_000)).Error; err != nil {
		t.Fatalf("update price failed: %v", err)
	}

	cart, err := svc.Get(8)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if !cart.Items[0].UnitPrice.Decimal.Equal(decimal.NewFromInt(35_000_000)) {
		t.Fatalf("snapshot price changed: %s", cart.Items[0].UnitPrice.String())
	}
	if cart.Items[0].ProductName == "" || cart.Items[0].ProductImage == "" {
		t.Fatalf("product snapshot missing: %+v", cart.Items[0])
	}
}

func TestCartAddItemRejectsUnknownVariant(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	err := svc.AddItem(AddCartItemInput{UserID: 1, VariantID: 999, Quantity: 1})
	if !errors.Is(err, ErrVariantNotFound) {
		t.Fatalf("expected ErrVariantNotFound, got %v", err)
	}
}

func TestCartUpdateQuantityZeroRemovesItem(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "MBA-8-256", 22_000_000, 5)

	if err := svc.AddItem(AddCartItemInput{UserID: 9, VariantID: variant.ID, Quantity: 3}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := svc.UpdateQuantity(9, variant.ID, 0); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}

	cart, err := svc.Get(9)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
	if !cart.TotalAmount.Decimal.IsZero() {
		t.Fatalf("expected zero total, got %s", cart.TotalAmount.String())
	}
}

func TestCartUpdateQuantitySetsExactValue(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "MBA-EXACT", 20_000_000, 5)

	if err := svc.AddItem(AddCartItemInput{UserID: 10, VariantID: variant.ID, Quantity: 5}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := svc.UpdateQuantity(10, variant.ID, 2); err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}

	cart, _ := svc.Get(10)
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("expected exact quantity 2, got %d", cart.Items[0].Quantity)
	}
}

func TestCartUpdateQuantityMissingCart(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	err := svc.UpdateQuantity(42, 1, 2)
	if !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartRemoveItemIdempotent(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "MBA-RM", 18_000_000, 5)

	if err := svc.AddItem(AddCartItemInput{UserID: 11, VariantID: variant.ID, Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	if err := svc.RemoveItem(11, variant.ID); err != nil {
		t.Fatalf("remove item failed: %v", err)
	}
	// 条目已不存在，再次移除应静默成功
	if err := svc.RemoveItem(11, variant.ID); err != nil {
		t.Fatalf("second remove should be no-op, got %v", err)
	}
	// 购物车不存在时报 NotFound
	if err := svc.RemoveItem(12, variant.ID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCartGetWithoutCartReturnsEmpty(t *testing.T) {
	svc, _ := setupCartServiceTest(t)
	cart, err := svc.Get(99)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 0 || !cart.TotalAmount.Decimal.IsZero() {
		t.Fatalf("expected empty cart value, got %+v", cart)
	}
}

func TestCartClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	a := seedVariant(t, db, "MBA-CLR-A", 10_000_000, 5)
	b := seedVariant(t, db, "MBA-CLR-B", 12_000_000, 5)

	_ = svc.AddItem(AddCartItemInput{UserID: 13, VariantID: a.ID, Quantity: 1})
	_ = svc.AddItem(AddCartItemInput{UserID: 13, VariantID: b.ID, Quantity: 2})

	if err := svc.Clear(13); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	cart, _ := svc.Get(13)
	if len(cart.Items) != 0 || !cart.TotalAmount.Decimal.IsZero() {
		t.Fatalf("cart not empty after clear: %+v", cart)
	}
}

func TestCartAddItemConcurrentAccumulate(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	variant := seedVariant(t, db, "SKU-RACE", 18_000_000, 50)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := svc.AddItem(AddCartItemInput{UserID: 7, VariantID: variant.ID, Quantity: 1}); err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	// 数量累加走单条 UPDATE，并发加购不得互相覆盖
	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.AddItem(AddCartItemInput{UserID: 7, VariantID: variant.ID, Quantity: 1})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("add item failed: %v", err)
		}
	}

	detail, err := svc.Get(7)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(detail.Items) != 1 {
		t.Fatalf("expected a single line, got %d", len(detail.Items))
	}
	if detail.Items[0].Quantity != 6 {
		t.Fatalf("expected quantity 6, got %d", detail.Items[0].Quantity)
	}
	if !detail.TotalAmount.Decimal.Equal(decimal.NewFromInt(108_000_000)) {
		t.Fatalf("expected total 108000000, got %s", detail.TotalAmount.String())
	}
}
