package service

import (
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/queue"
	"github.com/laptop-next/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务。状态与支付标记的变更全部走条件更新，
// 并发修改时以数据库行为准。
type OrderService struct {
	orderRepo   repository.OrderRepository
	variantRepo repository.VariantRepository
	queueClient *queue.Client
	now         func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, variantRepo repository.VariantRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// GetByIDForUser 获取用户订单详情
func (s *OrderService) GetByIDForUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNoForUser 根据订单编号获取用户订单详情
func (s *OrderService) GetByOrderNoForUser(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 获取用户订单列表
func (s *OrderService) ListByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetByID 获取订单（管理端）
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// SetStatus 变更订单状态。状态机约束在此强制执行，不依赖调用方：
// 终态拒绝一切流转，delivered 要求已支付，cancelled/returned 在
// 同一次更新内强制 is_paid=false 并回补库存。
func (s *OrderService) SetStatus(orderID uint, newStatus string) (*models.Order, error) {
	newStatus = normalizeStatus(newStatus)
	if !IsValidOrderStatus(newStatus) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if IsTerminalOrderStatus(order.Status) {
		return nil, ErrOrderStateTerminal
	}
	if !CanTransitOrderStatus(order.Status, newStatus) {
		return nil, ErrOrderStateConflict
	}
	if newStatus == constants.OrderStatusDelivered && !order.IsPaid {
		return nil, ErrOrderNotPaid
	}

	now := s.now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	releaseStock := newStatus == constants.OrderStatusCancelled || newStatus == constants.OrderStatusReturned
	if releaseStock {
		// 取消与退货强制清除支付标记，与状态同一条 UPDATE 落库
		updates["is_paid"] = false
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		affected, err := orderRepo.UpdateStatusIf(orderID, order.Status, newStatus, updates)
		if err != nil {
			return err
		}
		if affected == 0 {
			// 并发请求已经改走了状态
			return ErrOrderStateConflict
		}
		if releaseStock {
			variantRepo := s.variantRepo.WithTx(tx)
			for _, item := range order.Items {
				if _, err := variantRepo.ReleaseStock(item.VariantID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_status_changed",
		"order_no", order.OrderNo,
		"from", order.Status,
		"to", newStatus,
	)
	s.enqueueStatusNotify(orderID, newStatus)
	return s.orderRepo.GetByID(orderID)
}

func (s *OrderService) enqueueStatusNotify(orderID uint, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusNotify(queue.OrderStatusNotifyPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_status_notify_enqueue_failed", "order_id", orderID, "status", status, "error", err)
	}
}

// SetPaid 变更支付标记。cancelled/returned 状态下拒绝置为已支付；
// false→true 时写入 paid_at，重复置位是无动作成功。
func (s *OrderService) SetPaid(orderID uint, isPaid bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if isPaid {
		if order.Status == constants.OrderStatusCancelled || order.Status == constants.OrderStatusReturned {
			return nil, ErrOrderStateConflict
		}
		if order.IsPaid {
			return order, nil
		}
		affected, err := s.orderRepo.MarkPaidIf(orderID, s.now())
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			// 0 行有两种情形：他方已标记（幂等成功）或订单已被并发取消/退货（冲突）
			latest, err := s.orderRepo.GetByID(orderID)
			if err != nil {
				return nil, err
			}
			if latest == nil {
				return nil, ErrOrderNotFound
			}
			if !latest.IsPaid {
				return nil, ErrOrderStateConflict
			}
			logger.Infow("order_mark_paid_replayed", "order_no", order.OrderNo)
			return latest, nil
		}
		logger.Infow("order_marked_paid", "order_no", order.OrderNo)
		s.enqueueStatusNotify(orderID, order.Status)
		return s.orderRepo.GetByID(orderID)
	}

	if !order.IsPaid {
		return order, nil
	}
	if err := models.DB.Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, true).
		Updates(map[string]interface{}{"is_paid": false, "paid_at": nil}).Error; err != nil {
		return nil, err
	}
	logger.Infow("order_marked_unpaid", "order_no", order.OrderNo)
	return s.orderRepo.GetByID(orderID)
}
