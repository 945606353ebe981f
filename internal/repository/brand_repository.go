package repository

import (
	"errors"

	"github.com/laptop-next/internal/models"

	"gorm.io/gorm"
)

// BrandRepository 品牌数据访问接口
type BrandRepository interface {
	List(onlyActive bool) ([]models.Brand, error)
	GetByID(id uint) (*models.Brand, error)
	GetBySlug(slug string) (*models.Brand, error)
	Create(item *models.Brand) error
	Update(item *models.Brand) error
	Delete(id uint) error
}

// GormBrandRepository GORM 实现
type GormBrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository 创建品牌仓库
func NewBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// List 获取品牌列表
func (r *GormBrandRepository) List(onlyActive bool) ([]models.Brand, error) {
	query := r.db.Model(&models.Brand{})
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	var items []models.Brand
	if err := query.Order("sort_order DESC, id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID 根据 ID 获取品牌
func (r *GormBrandRepository) GetByID(id uint) (*models.Brand, error) {
	var item models.Brand
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetBySlug 根据 slug 获取品牌
func (r *GormBrandRepository) GetBySlug(slug string) (*models.Brand, error) {
	var item models.Brand
	if err := r.db.Where("slug = ?", slug).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建品牌
func (r *GormBrandRepository) Create(item *models.Brand) error {
	if item == nil {
		return errors.New("brand is nil")
	}
	return r.db.Create(item).Error
}

// Update 更新品牌
func (r *GormBrandRepository) Update(item *models.Brand) error {
	if item == nil {
		return errors.New("brand is nil")
	}
	return r.db.Save(item).Error
}

// Delete 删除品牌
func (r *GormBrandRepository) Delete(id uint) error {
	return r.db.Delete(&models.Brand{}, id).Error
}
