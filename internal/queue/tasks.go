package queue

import (
	"encoding/json"

	"github.com/laptop-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusNotify 订单状态变更通知任务
	TaskOrderStatusNotify = constants.TaskOrderStatusNotify
	// TaskPaymentReconcile 支付结果对账任务
	TaskPaymentReconcile = constants.TaskPaymentReconcile
)

// OrderStatusNotifyPayload 订单状态通知任务载荷
type OrderStatusNotifyPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// PaymentReconcilePayload 支付对账任务载荷
type PaymentReconcilePayload struct {
	AppTransID string `json:"app_trans_id"`
}

// NewOrderStatusNotifyTask 创建订单状态通知任务
func NewOrderStatusNotifyTask(payload OrderStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusNotify, body), nil
}

// NewPaymentReconcileTask 创建支付对账任务
func NewPaymentReconcileTask(payload PaymentReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReconcile, body), nil
}
