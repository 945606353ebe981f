package public

import (
	"errors"
	"strconv"

	"github.com/laptop-next/internal/http/handlers/shared"
	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/repository"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	brandID, _ := strconv.ParseUint(c.Query("brand_id"), 10, 64)
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 64)

	filter := repository.ProductListFilter{
		Page:       page,
		PageSize:   pageSize,
		BrandID:    uint(brandID),
		CategoryID: uint(categoryID),
		Search:     c.Query("search"),
		OnlyActive: true,
		InStock:    c.Query("in_stock") == "true",
	}

	products, total, err := h.ProductService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	totalPage := (total + int64(pageSize) - 1) / int64(pageSize)
	response.SuccessWithPage(c, gin.H{"items": products}, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	})
}

// GetProduct 商品详情（按 slug）
func (h *Handler) GetProduct(c *gin.Context) {
	slug := c.Param("slug")
	product, err := h.ProductService.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			response.NotFound(c, "product not found")
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	response.Success(c, product)
}

// ListBrands 品牌列表
func (h *Handler) ListBrands(c *gin.Context) {
	brands, err := h.ProductService.ListBrands(true)
	if err != nil {
		respondError(c, response.CodeInternal, "brand list failed", err)
		return
	}
	response.Success(c, gin.H{"items": brands})
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories(true)
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}
