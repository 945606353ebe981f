package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表。下单后订单项与金额冻结，仅 status 与 is_paid 可变。
type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo       string         `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号（ORDER-YYYYMMDD-XXXXXX）
	UserID        uint           `gorm:"index;not null;uniqueIndex:idx_checkout" json:"user_id"`    // 用户ID
	Status        string         `gorm:"index;not null" json:"status"`                              // 订单状态
	IsPaid        bool           `gorm:"not null;default:false;index" json:"is_paid"`               // 是否已支付
	PaidAt        *time.Time     `gorm:"index" json:"paid_at"`                                      // 支付时间
	TotalAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单总额（创建时计算，不再重算）
	PaymentMethod string         `gorm:"type:varchar(20);not null" json:"payment_method"`           // 支付方式
	ReceiverName  string         `gorm:"not null" json:"receiver_name"`                             // 收货人姓名
	ReceiverPhone string         `gorm:"not null" json:"receiver_phone"`                            // 收货人电话
	Address       string         `gorm:"type:text;not null" json:"address"`                         // 收货地址
	CheckoutKey   *string        `gorm:"type:varchar(64);uniqueIndex:idx_checkout" json:"-"`        // 结算幂等键（NULL 表示未携带，同一用户同一键唯一）
	ClientIP      string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`               // 下单客户端IP
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
