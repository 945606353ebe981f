package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/provider"
	"github.com/laptop-next/internal/queue"
	"github.com/laptop-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusNotify, c.handleOrderStatusNotify)
	mux.HandleFunc(queue.TaskPaymentReconcile, c.handlePaymentReconcile)
}

func (c *Consumer) handleOrderStatusNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	status := payload.Status
	if status == "" {
		status = order.Status
	}
	logger.Infow("order_status_notification",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"status", status,
		"is_paid", order.IsPaid,
		"receiver", order.ReceiverPhone,
	)
	return nil
}

func (c *Consumer) handlePaymentReconcile(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_reconcile_unmarshal_failed", "error", err)
		return err
	}
	if payload.AppTransID == "" {
		logger.Debugw("worker_payment_reconcile_skip_invalid_payload", "app_trans_id", payload.AppTransID)
		return nil
	}
	if c.PaymentService == nil {
		logger.Warnw("worker_payment_reconcile_skip_payment_service_nil", "app_trans_id", payload.AppTransID)
		return nil
	}
	result, err := c.PaymentService.CheckStatus(ctx, payload.AppTransID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			logger.Debugw("worker_payment_reconcile_skip_txn_not_found", "app_trans_id", payload.AppTransID)
			return nil
		case errors.Is(err, service.ErrPaymentGateway):
			logger.Warnw("worker_payment_reconcile_gateway_failed", "app_trans_id", payload.AppTransID, "error", err)
			return err
		default:
			logger.Warnw("worker_payment_reconcile_failed", "app_trans_id", payload.AppTransID, "error", err)
			return err
		}
	}
	logger.Infow("worker_payment_reconcile_done",
		"app_trans_id", payload.AppTransID,
		"is_paid", result.IsPaid,
		"is_processing", result.IsProcessing,
	)
	return nil
}
