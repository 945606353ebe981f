package repository

import (
	"errors"

	"github.com/laptop-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByUser(userID uint) (*models.Cart, error)
	GetByUserForUpdate(userID uint) (*models.Cart, error)
	GetByID(cartID uint) (*models.Cart, error)
	GetOrCreateByUser(userID uint) (*models.Cart, error)
	GetItem(cartID, variantID uint) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	IncrementItemQuantity(cartID, variantID uint, delta int) (int64, error)
	DeleteItem(cartID, variantID uint) error
	ClearItems(cartID uint) (int64, error)
	UpdateTotal(cartID uint, total models.Money) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByUser 获取用户购物车（不存在时返回 nil）
func (r *GormCartRepository) GetByUser(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByUserForUpdate 获取用户购物车并锁定购物车行，事务内使用。
// Postgres 下加 FOR UPDATE 串行化同一用户的并发结算；SQLite 单写者，无此子句。
func (r *GormCartRepository) GetByUserForUpdate(userID uint) (*models.Cart, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}
	query := r.db
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetByID 根据 ID 获取购物车
func (r *GormCartRepository) GetByID(cartID uint) (*models.Cart, error) {
	if cartID == 0 {
		return nil, errors.New("invalid cart id")
	}
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.id ASC")
	}).First(&cart, cartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateByUser 获取用户购物车，不存在时创建空车
func (r *GormCartRepository) GetOrCreateByUser(userID uint) (*models.Cart, error) {
	cart, err := r.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{UserID: userID}
	if err := r.db.Create(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}

// GetItem 获取购物车中指定规格的条目
func (r *GormCartRepository) GetItem(cartID, variantID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Where("cart_id = ? AND variant_id = ?", cartID, variantID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem 新增购物车条目
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	if item == nil {
		return errors.New("cart item is nil")
	}
	return r.db.Create(item).Error
}

// UpdateItem 更新购物车条目
func (r *GormCartRepository) UpdateItem(item *models.CartItem) error {
	if item == nil {
		return errors.New("cart item is nil")
	}
	return r.db.Save(item).Error
}

// IncrementItemQuantity 原子累加条目数量，返回受影响行数。
// 0 表示条目不存在，由调用方改走新建路径。
func (r *GormCartRepository) IncrementItemQuantity(cartID, variantID uint, delta int) (int64, error) {
	if delta <= 0 {
		return 0, errors.New("invalid quantity delta")
	}
	result := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND variant_id = ?", cartID, variantID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteItem 删除购物车条目
func (r *GormCartRepository) DeleteItem(cartID, variantID uint) error {
	return r.db.Where("cart_id = ? AND variant_id = ?", cartID, variantID).Delete(&models.CartItem{}).Error
}

// ClearItems 清空购物车条目，返回删除行数。
// 并发结算时后到的事务删到 0 行，据此判定购物车已被消费。
func (r *GormCartRepository) ClearItems(cartID uint) (int64, error) {
	result := r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// UpdateTotal 更新购物车总额
func (r *GormCartRepository) UpdateTotal(cartID uint, total models.Money) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_amount", total).Error
}
