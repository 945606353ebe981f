package public

import (
	"net/http"

	"github.com/laptop-next/internal/payment/zalopay"

	"github.com/gin-gonic/gin"
)

// CallbackRequest 网关回调请求体
type CallbackRequest struct {
	Data string `json:"data"`
	Mac  string `json:"mac"`
}

// PaymentCallback 网关异步回调入口。
// 无论业务结果如何都以 200 应答，网关依据 return_code 决定是否重试。
func (h *Handler) PaymentCallback(c *gin.Context) {
	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		requestLog(c).Warnw("payment_callback_bind_failed", "error", err)
		c.JSON(http.StatusOK, gin.H{
			"return_code":    zalopay.AckInvalidMac,
			"return_message": "payload invalid",
		})
		return
	}

	ack := h.PaymentService.HandleCallback(c.Request.Context(), req.Data, req.Mac)
	c.JSON(http.StatusOK, gin.H{
		"return_code":    ack.ReturnCode,
		"return_message": ack.ReturnMessage,
	})
}
