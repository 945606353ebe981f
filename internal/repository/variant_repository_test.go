package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/laptop-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupVariantRepositoryTest(t *testing.T) (*GormVariantRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:variant_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewVariantRepository(db), db
}

func createTestVariant(t *testing.T, db *gorm.DB, sku string, stock int) models.ProductVariant {
	t.Helper()
	product := models.Product{
		Name:     "ThinkPad X1 Carbon",
		Slug:     "thinkpad-x1-carbon-" + sku,
		IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variant := models.ProductVariant{
		ProductID:   product.ID,
		SKU:         sku,
		PriceAmount: models.NewMoneyFromInt(25_990_000),
		Stock:       stock,
		IsActive:    true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	return variant
}

func TestVariantRepositoryReserveStock(t *testing.T) {
	repo, db := setupVariantRepositoryTest(t)
	variant := createTestVariant(t, db, "TPX1C-16-512", 3)

	affected, err := repo.ReserveStock(variant.ID, 2)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := repo.GetByID(variant.ID)
	if err != nil {
		t.Fatalf("get variant failed: %v", err)
	}
	if got.Stock != 1 {
		t.Fatalf("expected stock 1, got %d", got.Stock)
	}
}

func TestVariantRepositoryReserveStockInsufficient(t *testing.T) {
	repo, db := setupVariantRepositoryTest(t)
	variant := createTestVariant(t, db, "TPX1C-32-1T", 1)

	affected, err := repo.ReserveStock(variant.ID, 2)
	if err != nil {
		t.Fatalf("reserve stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("expected 0 rows affected, got %d", affected)
	}

	got, err := repo.GetByID(variant.ID)
	if err != nil {
		t.Fatalf("get variant failed: %v", err)
	}
	if got.Stock != 1 {
		t.Fatalf("stock should be untouched, got %d", got.Stock)
	}
}

func TestVariantRepositoryReleaseStock(t *testing.T) {
	repo, db := setupVariantRepositoryTest(t)
	variant := createTestVariant(t, db, "TPX1C-16-1T", 0)

	affected, err := repo.ReleaseStock(variant.ID, 2)
	if err != nil {
		t.Fatalf("release stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row affected, got %d", affected)
	}

	got, err := repo.GetByID(variant.ID)
	if err != nil {
		t.Fatalf("get variant failed: %v", err)
	}
	if got.Stock != 2 {
		t.Fatalf("expected stock 2, got %d", got.Stock)
	}
}

func TestVariantRepositoryGetByIDNotFound(t *testing.T) {
	repo, _ := setupVariantRepositoryTest(t)

	got, err := repo.GetByID(999)
	if err != nil {
		t.Fatalf("get variant failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing variant, got %+v", got)
	}
}

func TestVariantRepositoryPriceSurvivesRoundTrip(t *testing.T) {
	repo, db := setupVariantRepositoryTest(t)
	variant := createTestVariant(t, db, "TPX1C-PRICE", 5)

	got, err := repo.GetByID(variant.ID)
	if err != nil {
		t.Fatalf("get variant failed: %v", err)
	}
	if !got.PriceAmount.Decimal.Equal(decimal.NewFromInt(25_990_000)) {
		t.Fatalf("unexpected price: %s", got.PriceAmount.String())
	}
}
