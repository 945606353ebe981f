package public

import (
	"errors"

	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePayment 为订单发起网关支付
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := c.Param("order_no")
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no invalid", nil)
		return
	}
	order, err := h.OrderRepo.GetByOrderNoAndUser(orderNo, uid)
	if err != nil {
		respondError(c, response.CodeInternal, "order query failed", err)
		return
	}
	if order == nil {
		response.NotFound(c, "order not found")
		return
	}

	result, err := h.PaymentService.CreatePaymentRequest(c.Request.Context(), order.ID, uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			response.NotFound(c, "order not found")
		case errors.Is(err, service.ErrPaymentMethodInvalid):
			respondError(c, response.CodeBadRequest, "payment method invalid", nil)
		case errors.Is(err, service.ErrOrderStateConflict):
			respondError(c, response.CodeConflict, "order already paid", nil)
		case errors.Is(err, service.ErrOrderStateTerminal):
			respondError(c, response.CodeConflict, "order closed", nil)
		case errors.Is(err, service.ErrPaymentGateway):
			respondError(c, response.CodeInternal, "payment gateway error", err)
		default:
			respondError(c, response.CodeInternal, "payment create failed", err)
		}
		return
	}
	response.Success(c, result)
}
