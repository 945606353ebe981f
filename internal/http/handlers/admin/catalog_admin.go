package admin

import (
	"strconv"

	"github.com/laptop-next/internal/http/response"
	"github.com/laptop-next/internal/models"

	"github.com/gin-gonic/gin"
)

// BrandRequest 品牌创建/更新请求
type BrandRequest struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug" binding:"required"`
	Logo      string `json:"logo"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug" binding:"required"`
	IsActive  *bool  `json:"is_active"`
	SortOrder int    `json:"sort_order"`
}

// AdminListBrands 管理端品牌列表
func (h *Handler) AdminListBrands(c *gin.Context) {
	brands, err := h.ProductService.ListBrands(false)
	if err != nil {
		respondError(c, response.CodeInternal, "brand list failed", err)
		return
	}
	response.Success(c, gin.H{"items": brands})
}

// AdminCreateBrand 管理端创建品牌
func (h *Handler) AdminCreateBrand(c *gin.Context) {
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	brand := &models.Brand{
		Name:      req.Name,
		Slug:      req.Slug,
		Logo:      req.Logo,
		IsActive:  isActive,
		SortOrder: req.SortOrder,
	}
	if err := h.BrandRepo.Create(brand); err != nil {
		respondError(c, response.CodeInternal, "brand create failed", err)
		return
	}
	response.Success(c, brand)
}

// AdminUpdateBrand 管理端更新品牌
func (h *Handler) AdminUpdateBrand(c *gin.Context) {
	brandID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || brandID == 0 {
		respondError(c, response.CodeBadRequest, "brand id invalid", nil)
		return
	}
	brand, err := h.BrandRepo.GetByID(uint(brandID))
	if err != nil {
		respondError(c, response.CodeInternal, "brand fetch failed", err)
		return
	}
	if brand == nil {
		response.NotFound(c, "brand not found")
		return
	}

	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	brand.Name = req.Name
	brand.Slug = req.Slug
	brand.Logo = req.Logo
	if req.IsActive != nil {
		brand.IsActive = *req.IsActive
	}
	brand.SortOrder = req.SortOrder

	if err := h.BrandRepo.Update(brand); err != nil {
		respondError(c, response.CodeInternal, "brand update failed", err)
		return
	}
	response.Success(c, brand)
}

// AdminDeleteBrand 管理端删除品牌
func (h *Handler) AdminDeleteBrand(c *gin.Context) {
	brandID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || brandID == 0 {
		respondError(c, response.CodeBadRequest, "brand id invalid", nil)
		return
	}
	if err := h.BrandRepo.Delete(uint(brandID)); err != nil {
		respondError(c, response.CodeInternal, "brand delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AdminListCategories 管理端分类列表
func (h *Handler) AdminListCategories(c *gin.Context) {
	categories, err := h.ProductService.ListCategories(false)
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, gin.H{"items": categories})
}

// AdminCreateCategory 管理端创建分类
func (h *Handler) AdminCreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	category := &models.Category{
		Name:      req.Name,
		Slug:      req.Slug,
		IsActive:  isActive,
		SortOrder: req.SortOrder,
	}
	if err := h.CategoryRepo.Create(category); err != nil {
		respondError(c, response.CodeInternal, "category create failed", err)
		return
	}
	response.Success(c, category)
}

// AdminUpdateCategory 管理端更新分类
func (h *Handler) AdminUpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || categoryID == 0 {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}
	category, err := h.CategoryRepo.GetByID(uint(categoryID))
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}
	if category == nil {
		response.NotFound(c, "category not found")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	category.Name = req.Name
	category.Slug = req.Slug
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	category.SortOrder = req.SortOrder

	if err := h.CategoryRepo.Update(category); err != nil {
		respondError(c, response.CodeInternal, "category update failed", err)
		return
	}
	response.Success(c, category)
}

// AdminDeleteCategory 管理端删除分类
func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || categoryID == 0 {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}
	if err := h.CategoryRepo.Delete(uint(categoryID)); err != nil {
		respondError(c, response.CodeInternal, "category delete failed", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
