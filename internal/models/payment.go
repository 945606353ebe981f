package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentTransaction 支付流水。app_trans_id 是网关侧交易号，
// 回调与查询都以它定位订单。
type PaymentTransaction struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	OrderID         uint           `gorm:"index;not null" json:"order_id"`                     // 关联订单ID
	AppTransID      string         `gorm:"uniqueIndex;type:varchar(64);not null" json:"app_trans_id"` // 网关交易号（yymmdd_orderno）
	Amount          Money          `gorm:"type:decimal(20,2);not null" json:"amount"`          // 支付金额
	Status          string         `gorm:"index;not null" json:"status"`                       // 流水状态
	ZPTransID       string         `gorm:"type:varchar(64)" json:"zp_trans_id,omitempty"`      // 网关内部流水号
	PayURL          string         `gorm:"type:text" json:"pay_url,omitempty"`                 // 收银台地址
	ProviderPayload JSON           `gorm:"type:json" json:"provider_payload,omitempty"`        // 网关原始回执
	CallbackAt      *time.Time     `json:"callback_at,omitempty"`                              // 回调到达时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName 指定表名
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
