package constants

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipping  = "shipping"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// 支付方式常量
const (
	PaymentMethodCOD     = "cod"
	PaymentMethodCash    = "cash"
	PaymentMethodZaloPay = "zalopay"
)

// 支付流水状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
)

// ZaloPay 回调应答码常量
const (
	ZaloPayAckSuccess    = 1  // 处理成功，网关停止重试
	ZaloPayAckRetry      = 0  // 内部错误，网关按自身策略重试
	ZaloPayAckInvalidMac = -1 // 签名不合法，网关不再重试
)

// 用户账号状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列任务常量
const (
	QueueDefault          = "default"
	TaskOrderStatusNotify = "order:status_notify"
	TaskPaymentReconcile  = "payment:reconcile"
)
