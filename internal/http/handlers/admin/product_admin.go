package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	BrandID     uint               `json:"brand_id" binding:"required"`
	CategoryID  uint               `json:"category_id" binding:"required"`
	Name        string             `json:"name" binding:"required"`
	Slug        string             `json:"slug" binding:"required"`
	Description string             `json:"description"`
	Images      models.StringArray `json:"images"`
	IsActive    *bool              `json:"is_active"`
	SortOrder   int                `json:"sort_order"`
	Variants    []VariantRequest   `json:"variants"`
}

// VariantRequest 规格创建/更新请求
type VariantRequest struct {
	SKU           string       `json:"sku" binding:"required"`
	Attributes    models.JSON  `json:"attributes"`
	PriceAmount   models.Money `json:"price_amount"`
	OriginalPrice models.Money `json:"original_price"`
	Stock         int          `json:"stock"`
	IsActive      *bool        `json:"is_active"`
	SortOrder     int          `json:"sort_order"`
}

// AdminListProducts 管理端商品列表
func (h *Handler) AdminListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	brandID, _ := strconv.ParseUint(c.Query("brand_id"), 10, 64)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		BrandID:    uint(brandID),
		CategoryID: uint(categoryID),
		Search:     strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, gin.H{"items": products}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// AdminCreateProduct 管理端创建商品（可携带初始规格）
func (h *Handler) AdminCreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	product := &models.Product{
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Images:      req.Images,
		IsActive:    isActive,
		SortOrder:   req.SortOrder,
	}
	variants := make([]models.ProductVariant, 0, len(req.Variants))
	for _, v := range req.Variants {
		variantActive := true
		if v.IsActive != nil {
			variantActive = *v.IsActive
		}
		variants = append(variants, models.ProductVariant{
			SKU:            v.SKU,
			AttributesJSON: v.Attributes,
			PriceAmount:    v.PriceAmount,
			OriginalPrice:  v.OriginalPrice,
			Stock:          v.Stock,
			IsActive:       variantActive,
			SortOrder:      v.SortOrder,
		})
	}

	if err := h.ProductService.CreateProduct(product, variants); err != nil {
		respondError(c, response.CodeInternal, "product create failed", err)
		return
	}
	response.Success(c, product)
}

// AdminUpdateProduct 管理端更新商品
func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}
	product, err := h.ProductService.GetByID(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	product.BrandID = req.BrandID
	product.CategoryID = req.CategoryID
	product.Name = req.Name
	product.Slug = req.Slug
	product.Description = req.Description
	product.Images = req.Images
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.SortOrder = req.SortOrder

	if err := h.ProductService.UpdateProduct(product); err != nil {
		respondError(c, response.CodeInternal, "product update failed", err)
		return
	}
	response.Success(c, product)
}

// AdminUpdateVariant 管理端更新规格（价格/库存/上下架）
func (h *Handler) AdminUpdateVariant(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || variantID == 0 {
		respondError(c, response.CodeBadRequest, "variant id invalid", nil)
		return
	}
	variant, err := h.ProductService.GetVariant(uint(variantID))
	if err != nil {
		if errors.Is(err, service.ErrVariantNotFound) {
			response.NotFound(c, "variant not found")
			return
		}
		respondError(c, response.CodeInternal, "variant fetch failed", err)
		return
	}

	var req VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	variant.SKU = req.SKU
	variant.AttributesJSON = req.Attributes
	variant.PriceAmount = req.PriceAmount
	variant.OriginalPrice = req.OriginalPrice
	variant.Stock = req.Stock
	if req.IsActive != nil {
		variant.IsActive = *req.IsActive
	}
	variant.SortOrder = req.SortOrder

	if err := h.ProductService.UpdateVariant(variant); err != nil {
		respondError(c, response.CodeInternal, "variant update failed", err)
		return
	}
	response.Success(c, variant)
}
