package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车表（每个用户至多一条）
type Cart struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UserID      uint           `gorm:"not null;uniqueIndex" json:"user_id"`                      // 用户ID
	TotalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 合计金额（派生值）
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// CartItem 购物车项，价格与规格在加购时快照
type CartItem struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                     // 主键
	CartID         uint           `gorm:"not null;uniqueIndex:idx_cart_variant" json:"cart_id"`     // 购物车ID
	VariantID      uint           `gorm:"not null;uniqueIndex:idx_cart_variant" json:"variant_id"`  // 变体ID
	Quantity       int            `gorm:"not null" json:"quantity"`                                 // 数量
	UnitPrice      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 加购时单价快照
	ProductName    string         `gorm:"not null" json:"product_name"`                             // 商品名称快照
	ProductImage   string         `gorm:"type:text" json:"product_image"`                           // 商品图片快照
	AttributesJSON JSON           `gorm:"type:json" json:"attributes"`                              // 规格值快照
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
