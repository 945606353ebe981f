package main

import (
	"github.com/laptop-next/internal/config"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加品牌
	brands := []models.Brand{
		{Name: "Lenovo", Slug: "lenovo", SortOrder: 1},
		{Name: "Dell", Slug: "dell", SortOrder: 2},
		{Name: "ASUS", Slug: "asus", SortOrder: 3},
		{Name: "Apple", Slug: "apple", SortOrder: 4},
	}
	for _, b := range brands {
		var existing models.Brand
		if err := models.DB.Where("slug = ?", b.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&b).Error; err != nil {
				stdLog.Printf("Failed to create brand %s: %v", b.Slug, err)
			} else {
				stdLog.Printf("Created brand: %s", b.Slug)
			}
		} else {
			stdLog.Printf("Brand already exists: %s", b.Slug)
		}
	}

	// 添加分类
	categories := []models.Category{
		{Name: "Gaming", Slug: "gaming", SortOrder: 1},
		{Name: "Ultrabook", Slug: "ultrabook", SortOrder: 2},
		{Name: "Workstation", Slug: "workstation", SortOrder: 3},
	}
	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 查询品牌/分类ID
	brandIDs := map[string]uint{}
	var brandList []models.Brand
	if err := models.DB.Find(&brandList).Error; err != nil {
		stdLog.Printf("Failed to load brands: %v", err)
	}
	for _, b := range brandList {
		brandIDs[b.Slug] = b.ID
	}
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}

	// 添加机型与变体（价格单位 VND）
	type seedVariant struct {
		SKU        string
		Attributes map[string]interface{}
		Price      int64
		Original   int64
		Stock      int
	}
	type seedProduct struct {
		Brand       string
		Category    string
		Name        string
		Slug        string
		Description string
		Images      []string
		Variants    []seedVariant
	}

	products := []seedProduct{
		{
			Brand:       "lenovo",
			Category:    "gaming",
			Name:        "Legion Pro 5",
			Slug:        "lenovo-legion-pro-5",
			Description: "16 inch gaming laptop with 240Hz display and per-key RGB keyboard.",
			Images:      []string{"https://images.example.com/legion-pro-5.jpg"},
			Variants: []seedVariant{
				{
					SKU:        "LEG5-R7-16-4060",
					Attributes: map[string]interface{}{"cpu": "Ryzen 7 7745HX", "ram": "16GB", "gpu": "RTX 4060", "color": "Onyx Grey"},
					Price:      35990000,
					Original:   39990000,
					Stock:      12,
				},
				{
					SKU:        "LEG5-R9-32-4070",
					Attributes: map[string]interface{}{"cpu": "Ryzen 9 7945HX", "ram": "32GB", "gpu": "RTX 4070", "color": "Onyx Grey"},
					Price:      46990000,
					Original:   49990000,
					Stock:      6,
				},
			},
		},
		{
			Brand:       "dell",
			Category:    "ultrabook",
			Name:        "XPS 13",
			Slug:        "dell-xps-13",
			Description: "Compact 13.4 inch ultrabook with InfinityEdge display.",
			Images:      []string{"https://images.example.com/xps-13.jpg"},
			Variants: []seedVariant{
				{
					SKU:        "XPS13-I5-16-512",
					Attributes: map[string]interface{}{"cpu": "Core Ultra 5 125H", "ram": "16GB", "ssd": "512GB", "color": "Platinum"},
					Price:      31990000,
					Original:   33990000,
					Stock:      20,
				},
				{
					SKU:        "XPS13-I7-32-1T",
					Attributes: map[string]interface{}{"cpu": "Core Ultra 7 155H", "ram": "32GB", "ssd": "1TB", "color": "Graphite"},
					Price:      42990000,
					Original:   45990000,
					Stock:      8,
				},
			},
		},
		{
			Brand:       "apple",
			Category:    "ultrabook",
			Name:        "MacBook Air M3",
			Slug:        "macbook-air-m3",
			Description: "13.6 inch fanless laptop with Apple M3 chip.",
			Images:      []string{"https://images.example.com/macbook-air-m3.jpg"},
			Variants: []seedVariant{
				{
					SKU:        "MBA-M3-8-256",
					Attributes: map[string]interface{}{"cpu": "Apple M3", "ram": "8GB", "ssd": "256GB", "color": "Midnight"},
					Price:      27990000,
					Original:   28990000,
					Stock:      15,
				},
				{
					SKU:        "MBA-M3-16-512",
					Attributes: map[string]interface{}{"cpu": "Apple M3", "ram": "16GB", "ssd": "512GB", "color": "Starlight"},
					Price:      34990000,
					Original:   36990000,
					Stock:      10,
				},
			},
		},
		{
			Brand:       "asus",
			Category:    "workstation",
			Name:        "ProArt Studiobook 16",
			Slug:        "asus-proart-studiobook-16",
			Description: "16 inch OLED creator workstation with ASUS Dial.",
			Images:      []string{"https://images.example.com/proart-16.jpg"},
			Variants: []seedVariant{
				{
					SKU:        "PA16-I9-64-4080",
					Attributes: map[string]interface{}{"cpu": "Core i9-13980HX", "ram": "64GB", "gpu": "RTX 4080", "color": "Mineral Black"},
					Price:      79990000,
					Original:   84990000,
					Stock:      3,
				},
			},
		},
	}

	for _, p := range products {
		brandID := brandIDs[p.Brand]
		categoryID := categoryIDs[p.Category]
		if brandID == 0 || categoryID == 0 {
			stdLog.Printf("Skip product %s: brand/category missing", p.Slug)
			continue
		}

		var existing models.Product
		if err := models.DB.Where("slug = ?", p.Slug).First(&existing).Error; err == nil {
			stdLog.Printf("Product already exists: %s", p.Slug)
			continue
		}

		product := models.Product{
			BrandID:     brandID,
			CategoryID:  categoryID,
			Name:        p.Name,
			Slug:        p.Slug,
			Description: p.Description,
			Images:      models.StringArray(p.Images),
			IsActive:    true,
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", p.Slug, err)
			continue
		}
		for i, v := range p.Variants {
			variant := models.ProductVariant{
				ProductID:      product.ID,
				SKU:            v.SKU,
				AttributesJSON: models.JSON(v.Attributes),
				PriceAmount:    models.NewMoneyFromInt(v.Price),
				OriginalPrice:  models.NewMoneyFromInt(v.Original),
				Stock:          v.Stock,
				IsActive:       true,
				SortOrder:      i,
			}
			if err := models.DB.Create(&variant).Error; err != nil {
				stdLog.Printf("Failed to create variant %s: %v", v.SKU, err)
			}
		}
		stdLog.Printf("Created product: %s (%d variants)", p.Slug, len(p.Variants))
	}

	stdLog.Println("Seed finished")
}
