package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（笔记本机型）
type Product struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // 主键
	BrandID     uint           `gorm:"not null;index" json:"brand_id"`    // 品牌ID
	CategoryID  uint           `gorm:"not null;index" json:"category_id"` // 分类ID
	Name        string         `gorm:"not null" json:"name"`              // 机型名称
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`  // 唯一标识
	Description string         `gorm:"type:text" json:"description"`      // 机型描述
	Images      StringArray    `gorm:"type:json" json:"images"`           // 图片数组
	IsActive    bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// 关联
	Brand    Brand            `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Category Category         `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// MainImage 返回首图（无图时为空字符串）
func (p *Product) MainImage() string {
	if p == nil || len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
