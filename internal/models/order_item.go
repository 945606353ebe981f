package models

import (
	"time"
)

// OrderItem 订单项。下单时从购物车快照复制，此后永不变更。
type OrderItem struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OrderID        uint      `gorm:"index;not null" json:"order_id"`                           // 所属订单ID
	VariantID      uint      `gorm:"index;not null" json:"variant_id"`                         // 商品规格ID
	ProductName    string    `gorm:"not null" json:"product_name"`                             // 商品名称快照
	ProductImage   string    `json:"product_image"`                                            // 商品图片快照
	AttributesJSON JSON      `gorm:"type:json" json:"attributes"`                              // 规格属性快照
	UnitPrice      Money     `gorm:"type:decimal(20,2);not null" json:"unit_price"`            // 单价快照
	Quantity       int       `gorm:"not null" json:"quantity"`                                 // 购买数量
	TotalPrice     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计（单价*数量）
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
