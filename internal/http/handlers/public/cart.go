package public

import (
	"errors"
	"strconv"

	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	detail, err := h.CartService.Get(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, detail)
}

// AddCartItem 添加购物车项，同规格重复添加时数量累加
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	err := h.CartService.AddItem(service.AddCartItemInput{
		UserID:    uid,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCartItem):
			respondError(c, response.CodeBadRequest, "cart item invalid", nil)
		case errors.Is(err, service.ErrVariantNotFound):
			respondError(c, response.CodeNotFound, "variant not found", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "product not available", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// UpdateCartItem 设置购物车项数量，数量为 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "variant id invalid", nil)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.CartService.UpdateQuantity(uid, uint(variantID), req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			respondError(c, response.CodeNotFound, "cart item not found", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "variant id invalid", nil)
		return
	}

	if err := h.CartService.RemoveItem(uid, uint(variantID)); err != nil {
		switch {
		case errors.Is(err, service.ErrCartNotFound):
			respondError(c, response.CodeNotFound, "cart not found", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "cart clear failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
