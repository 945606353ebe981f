package models

import (
	"time"

	"gorm.io/gorm"
)

// Brand 品牌表
type Brand struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Name      string         `gorm:"not null" json:"name"`             // 品牌名称
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"` // 唯一标识
	Logo      string         `gorm:"type:text" json:"logo"`            // 品牌 Logo
	IsActive  bool           `gorm:"default:true;index" json:"is_active"`
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Brand) TableName() string {
	return "brands"
}
