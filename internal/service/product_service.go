package service

import (
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"
)

// ProductService 商品目录服务
type ProductService struct {
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
	}
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.productRepo.List(filter)
}

// GetByID 商品详情
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetBySlug 商品详情（按 slug）
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	product, err := s.productRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// GetVariant 规格详情
func (s *ProductService) GetVariant(id uint) (*models.ProductVariant, error) {
	variant, err := s.variantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if variant == nil {
		return nil, ErrVariantNotFound
	}
	return variant, nil
}

// ListBrands 品牌列表
func (s *ProductService) ListBrands(onlyActive bool) ([]models.Brand, error) {
	return s.brandRepo.List(onlyActive)
}

// ListCategories 分类列表
func (s *ProductService) ListCategories(onlyActive bool) ([]models.Category, error) {
	return s.categoryRepo.List(onlyActive)
}

// CreateProduct 创建商品（管理端）
func (s *ProductService) CreateProduct(product *models.Product, variants []models.ProductVariant) error {
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.productRepo.Create(product); err != nil {
		return err
	}
	for i := range variants {
		variants[i].ProductID = product.ID
	}
	return s.variantRepo.CreateBatch(variants)
}

// UpdateProduct 更新商品（管理端）
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if product == nil {
		return ErrProductNotFound
	}
	return s.productRepo.Update(product)
}

// UpdateVariant 更新规格（管理端）
func (s *ProductService) UpdateVariant(variant *models.ProductVariant) error {
	if variant == nil {
		return ErrVariantNotFound
	}
	return s.variantRepo.Update(variant)
}
