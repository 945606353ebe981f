package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListPayments 管理端支付流水列表
func (h *Handler) AdminListPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	var orderID uint
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			orderID = uint(parsed)
		}
	}

	payments, total, err := h.PaymentRepo.List(repository.PaymentListFilter{
		Page:        page,
		PageSize:    pageSize,
		OrderID:     orderID,
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment list failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": payments}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AdminReconcilePayment 主动向网关查询支付结果并补账
func (h *Handler) AdminReconcilePayment(c *gin.Context) {
	appTransID := strings.TrimSpace(c.Param("app_trans_id"))
	if appTransID == "" {
		respondError(c, response.CodeBadRequest, "app_trans_id required", nil)
		return
	}

	result, err := h.PaymentService.CheckStatus(c.Request.Context(), appTransID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			response.NotFound(c, "payment not found")
		case errors.Is(err, service.ErrPaymentGateway):
			respondError(c, response.CodeInternal, "payment gateway error", err)
		default:
			respondError(c, response.CodeInternal, "payment reconcile failed", err)
		}
		return
	}
	response.Success(c, result)
}
