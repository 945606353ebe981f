package public

import (
	"errors"
	"strconv"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/http/handlers/shared"
	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	ReceiverName  string `json:"receiver_name" binding:"required"`
	ReceiverPhone string `json:"receiver_phone" binding:"required"`
	Address       string `json:"address" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	CheckoutKey   string `json:"checkout_key"`
}

// Checkout 购物车结算下单
func (h *Handler) Checkout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.CheckoutService.PlaceOrder(c.Request.Context(), service.PlaceOrderInput{
		UserID: uid,
		Shipping: service.ShippingInfo{
			FullName: req.ReceiverName,
			Phone:    req.ReceiverPhone,
			Address:  req.Address,
		},
		PaymentMethod: req.PaymentMethod,
		CheckoutKey:   req.CheckoutKey,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "cart is empty", nil)
		case errors.Is(err, service.ErrShippingInvalid):
			respondError(c, response.CodeBadRequest, "shipping info invalid", nil)
		case errors.Is(err, service.ErrPaymentMethodInvalid):
			respondError(c, response.CodeBadRequest, "payment method invalid", nil)
		case errors.Is(err, service.ErrStockInsufficient):
			respondError(c, response.CodeConflict, "stock insufficient", nil)
		case errors.Is(err, service.ErrCheckoutInProgress):
			respondError(c, response.CodeTooManyRequests, "checkout in progress", nil)
		default:
			respondError(c, response.CodeInternal, "checkout failed", err)
		}
		return
	}
	response.Success(c, order)
}

// ListOrders 我的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, gin.H{"items": orders}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetOrder 我的订单详情（按订单号）
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := c.Param("order_no")
	order, err := h.OrderService.GetByOrderNoForUser(orderNo, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户取消订单，仅限未发货阶段
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := c.Param("order_no")
	order, err := h.OrderService.GetByOrderNoForUser(orderNo, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			response.NotFound(c, "order not found")
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}
	if order.Status != constants.OrderStatusPending && order.Status != constants.OrderStatusConfirmed {
		respondError(c, response.CodeConflict, "order not cancellable", nil)
		return
	}

	updated, err := h.OrderService.SetStatus(order.ID, constants.OrderStatusCancelled)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderStateTerminal), errors.Is(err, service.ErrOrderStateConflict):
			respondError(c, response.CodeConflict, "order state conflict", nil)
		default:
			respondError(c, response.CodeInternal, "order cancel failed", err)
		}
		return
	}
	response.Success(c, updated)
}
