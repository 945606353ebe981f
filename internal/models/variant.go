package models

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant 商品变体表（具体 CPU/内存/颜色 配置）
type ProductVariant struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	ProductID      uint           `gorm:"not null;index" json:"product_id"`                             // 商品ID
	SKU            string         `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"`  // SKU 编码（全局唯一）
	AttributesJSON JSON           `gorm:"type:json" json:"attributes"`                                  // 规格值（CPU/RAM/Color 等）
	PriceAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`    // 售价
	OriginalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_price"`  // 原价
	Stock          int            `gorm:"not null;default:0" json:"stock"`                              // 可售库存
	IsActive       bool           `gorm:"default:true;index" json:"is_active"`                          // 是否启用
	SortOrder      int            `gorm:"default:0;index" json:"sort_order"`                            // 排序权重
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductVariant) TableName() string {
	return "product_variants"
}
