package service

import (
	"context"
	"fmt"
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/payment/zalopay"
	"github.com/laptop-next/internal/queue"
	"github.com/laptop-next/internal/repository"
)

// 发起支付后延时对账，兜底网关回调丢失的场景
const paymentReconcileDelay = 15 * time.Minute

// CreatePaymentResult 发起支付结果
type CreatePaymentResult struct {
	PaymentID  uint   `json:"payment_id"`
	AppTransID string `json:"app_trans_id"`
	PayURL     string `json:"pay_url"`
}

// PaymentService 支付服务。维护网关交易号到订单的映射，
// 回调与主动查询都经由该映射定位订单。
type PaymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	orderSvc    *OrderService
	gateway     *zalopay.Config
	queueClient *queue.Client
	now         func() time.Time
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	orderSvc *OrderService,
	gateway *zalopay.Config,
	queueClient *queue.Client,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		orderSvc:    orderSvc,
		gateway:     gateway,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// CreatePaymentRequest 为订单发起网关支付，返回收银台地址。
// 网关错误原样附带在错误链上供排查，调用方可引导用户重试。
func (s *PaymentService) CreatePaymentRequest(ctx context.Context, orderID, userID uint) (*CreatePaymentResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentGateway
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.PaymentMethod != constants.PaymentMethodZaloPay {
		return nil, ErrPaymentMethodInvalid
	}
	if order.IsPaid {
		return nil, ErrOrderStateConflict
	}
	if IsTerminalOrderStatus(order.Status) {
		return nil, ErrOrderStateTerminal
	}

	// 同一订单重复发起时复用未失效的交易
	if existing, err := s.paymentRepo.GetLatestByOrder(order.ID); err != nil {
		return nil, err
	} else if existing != nil && existing.Status == constants.PaymentStatusInitiated && existing.PayURL != "" {
		return &CreatePaymentResult{
			PaymentID:  existing.ID,
			AppTransID: existing.AppTransID,
			PayURL:     existing.PayURL,
		}, nil
	}

	now := s.now()
	appTransID := zalopay.BuildAppTransID(now, order.OrderNo)
	amount := order.TotalAmount.VNDAmount()

	items := make([]map[string]interface{}, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, map[string]interface{}{
			"name":     item.ProductName,
			"quantity": item.Quantity,
			"price":    item.UnitPrice.VNDAmount(),
		})
	}

	result, err := zalopay.CreatePayment(ctx, s.gateway, zalopay.CreateInput{
		AppTransID: appTransID,
		AppUser:    fmt.Sprintf("user_%d", order.UserID),
		Amount:     amount,
		Subject:    order.OrderNo,
		EmbedData:  map[string]interface{}{"order_no": order.OrderNo},
		Items:      items,
	})
	if err != nil {
		logger.Errorw("payment_create_failed",
			"order_no", order.OrderNo,
			"app_trans_id", appTransID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	txn := &models.PaymentTransaction{
		OrderID:    order.ID,
		AppTransID: appTransID,
		Amount:     order.TotalAmount,
		Status:     constants.PaymentStatusInitiated,
		PayURL:     result.OrderURL,
	}
	if err := s.paymentRepo.Create(txn); err != nil {
		return nil, err
	}

	logger.Infow("payment_created",
		"order_no", order.OrderNo,
		"app_trans_id", appTransID,
		"amount", amount,
	)
	if s.queueClient != nil {
		if err := s.queueClient.EnqueuePaymentReconcile(queue.PaymentReconcilePayload{AppTransID: appTransID}, paymentReconcileDelay); err != nil {
			logger.Warnw("payment_reconcile_enqueue_failed", "app_trans_id", appTransID, "error", err)
		}
	}
	return &CreatePaymentResult{
		PaymentID:  txn.ID,
		AppTransID: appTransID,
		PayURL:     result.OrderURL,
	}, nil
}

// CheckStatus 主动向网关查询支付结果，回调疑似丢失时用于人工对账。
// 网关确认已支付时同步补记订单支付标记。
func (s *PaymentService) CheckStatus(ctx context.Context, appTransID string) (*zalopay.QueryResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentGateway
	}
	txn, err := s.paymentRepo.GetByAppTransID(appTransID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, ErrPaymentNotFound
	}

	result, err := zalopay.QueryOrder(ctx, s.gateway, appTransID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if result.IsPaid && txn.Status != constants.PaymentStatusSuccess {
		if _, err := s.applyPaymentSuccess(txn, result.ZPTransID, models.JSON(result.Raw)); err != nil {
			logger.Errorw("payment_reconcile_apply_failed",
				"app_trans_id", appTransID,
				"error", err,
			)
			return nil, err
		}
		logger.Infow("payment_reconciled_by_query", "app_trans_id", appTransID)
	}
	return result, nil
}

// applyPaymentSuccess 落支付成功：流水置成功，订单标记已支付。
// 两步各自幂等，重复调用不会二次生效。
func (s *PaymentService) applyPaymentSuccess(txn *models.PaymentTransaction, zpTransID int64, payload models.JSON) (bool, error) {
	now := s.now()
	affected, err := s.paymentRepo.MarkSuccessIf(txn.ID, fmt.Sprintf("%d", zpTransID), payload, now)
	if err != nil {
		return false, err
	}
	if _, err := s.orderSvc.SetPaid(txn.OrderID, true); err != nil {
		return false, err
	}
	return affected > 0, nil
}
