package service

import (
	"context"
	"strings"
	"time"

	"github.com/laptop-next/internal/cache"
	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/logger"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShippingInfo 收货信息
type ShippingInfo struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// PlaceOrderInput 下单输入
type PlaceOrderInput struct {
	UserID        uint
	Shipping      ShippingInfo
	PaymentMethod string
	// CheckoutKey 客户端结算幂等键，可空。携带时重放请求返回首次创建的订单。
	CheckoutKey string
	ClientIP    string
}

// CheckoutService 结算服务。购物车到订单的转换在单事务内完成：
// 库存预占、订单落库、清空购物车三者要么全部生效要么全部回滚。
type CheckoutService struct {
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	variantRepo repository.VariantRepository

	immediatePaidMethods map[string]bool
	lockTTL              time.Duration
	now                  func() time.Time
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	variantRepo repository.VariantRepository,
	immediatePaidMethods []string,
	lockSeconds int,
) *CheckoutService {
	paid := make(map[string]bool, len(immediatePaidMethods))
	for _, m := range immediatePaidMethods {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			paid[m] = true
		}
	}
	if lockSeconds <= 0 {
		lockSeconds = 10
	}
	return &CheckoutService{
		cartRepo:             cartRepo,
		orderRepo:            orderRepo,
		variantRepo:          variantRepo,
		immediatePaidMethods: paid,
		lockTTL:              time.Duration(lockSeconds) * time.Second,
		now:                  time.Now,
	}
}

var allowedPaymentMethods = map[string]bool{
	constants.PaymentMethodCOD:     true,
	constants.PaymentMethodCash:    true,
	constants.PaymentMethodZaloPay: true,
}

// PlaceOrder 将用户购物车转换为订单。
// 恰好一单由事务内机制保证：购物车行 FOR UPDATE 锁定，清车删到 0 行即回滚。
// Redis 锁只是挡掉大部分并发请求的前置快速失败，不承担正确性。
func (s *CheckoutService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidCartItem
	}
	method := strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if !allowedPaymentMethods[method] {
		return nil, ErrPaymentMethodInvalid
	}
	if err := validateShipping(input.Shipping); err != nil {
		return nil, err
	}

	// 幂等键重放直接返回已有订单
	checkoutKey := strings.TrimSpace(input.CheckoutKey)
	if checkoutKey != "" {
		existing, err := s.orderRepo.GetByCheckoutKey(input.UserID, checkoutKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	lockKey := cache.CheckoutLockKey(input.UserID)
	acquired, err := cache.AcquireLock(ctx, lockKey, s.lockTTL)
	if err != nil {
		logger.Warnw("checkout_lock_acquire_failed", "user_id", input.UserID, "error", err)
	} else if !acquired {
		return nil, ErrCheckoutInProgress
	}
	defer func() {
		_ = cache.ReleaseLock(ctx, lockKey)
	}()

	now := s.now()
	orderNo, err := GenerateOrderNo(now)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		variantRepo := s.variantRepo.WithTx(tx)

		cart, err := cartRepo.GetByUserForUpdate(input.UserID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		// 订单项原样复制购物车快照，不回读目录
		items := make([]models.OrderItem, 0, len(cart.Items))
		total := decimal.Zero
		for _, ci := range cart.Items {
			line := ci.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(ci.Quantity)))
			total = total.Add(line)
			items = append(items, models.OrderItem{
				VariantID:      ci.VariantID,
				ProductName:    ci.ProductName,
				ProductImage:   ci.ProductImage,
				AttributesJSON: ci.AttributesJSON,
				UnitPrice:      ci.UnitPrice,
				Quantity:       ci.Quantity,
				TotalPrice:     models.NewMoneyFromDecimal(line),
			})

			affected, err := variantRepo.ReserveStock(ci.VariantID, ci.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		order := &models.Order{
			OrderNo:       orderNo,
			UserID:        input.UserID,
			Status:        constants.OrderStatusPending,
			IsPaid:        s.immediatePaidMethods[method],
			TotalAmount:   models.NewMoneyFromDecimal(total),
			PaymentMethod: method,
			ReceiverName:  strings.TrimSpace(input.Shipping.FullName),
			ReceiverPhone: strings.TrimSpace(input.Shipping.Phone),
			Address:       strings.TrimSpace(input.Shipping.Address),
			ClientIP:      input.ClientIP,
		}
		if checkoutKey != "" {
			order.CheckoutKey = &checkoutKey
		}
		if order.IsPaid {
			paidAt := now
			order.PaidAt = &paidAt
		}
		if err := orderRepo.Create(order, items); err != nil {
			return err
		}
		cleared, err := cartRepo.ClearItems(cart.ID)
		if err != nil {
			return err
		}
		if cleared == 0 {
			// 条目已被并发结算删走，整单回滚
			return ErrCartEmpty
		}
		if err := cartRepo.UpdateTotal(cart.ID, models.NewMoneyFromDecimal(decimal.Zero)); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		// (user_id, checkout_key) 唯一索引兜底：并发携带同一键时后到事务撞索引，返回首单
		if checkoutKey != "" {
			if existing, lookupErr := s.orderRepo.GetByCheckoutKey(input.UserID, checkoutKey); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	logger.Infow("order_placed",
		"order_no", created.OrderNo,
		"user_id", input.UserID,
		"payment_method", method,
		"total_amount", created.TotalAmount.String(),
		"is_paid", created.IsPaid,
	)
	return s.orderRepo.GetByID(created.ID)
}

func validateShipping(info ShippingInfo) error {
	if strings.TrimSpace(info.FullName) == "" ||
		strings.TrimSpace(info.Phone) == "" ||
		strings.TrimSpace(info.Address) == "" {
		return ErrShippingInvalid
	}
	return nil
}
