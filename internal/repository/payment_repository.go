package repository

import (
	"errors"
	"time"

	"github.com/laptop-next/internal/constants"
	"github.com/laptop-next/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付流水数据访问接口
type PaymentRepository interface {
	Create(item *models.PaymentTransaction) error
	GetByID(id uint) (*models.PaymentTransaction, error)
	GetByAppTransID(appTransID string) (*models.PaymentTransaction, error)
	GetLatestByOrder(orderID uint) (*models.PaymentTransaction, error)
	List(filter PaymentListFilter) ([]models.PaymentTransaction, int64, error)
	Update(item *models.PaymentTransaction) error
	MarkSuccessIf(id uint, zpTransID string, payload models.JSON, callbackAt time.Time) (int64, error)
	MarkFailed(id uint, payload models.JSON) error
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付流水仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create 创建支付流水
func (r *GormPaymentRepository) Create(item *models.PaymentTransaction) error {
	if item == nil {
		return errors.New("payment is nil")
	}
	return r.db.Create(item).Error
}

// GetByID 根据 ID 获取支付流水
func (r *GormPaymentRepository) GetByID(id uint) (*models.PaymentTransaction, error) {
	var item models.PaymentTransaction
	if err := r.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetByAppTransID 根据网关交易号获取支付流水
func (r *GormPaymentRepository) GetByAppTransID(appTransID string) (*models.PaymentTransaction, error) {
	if appTransID == "" {
		return nil, errors.New("invalid app trans id")
	}
	var item models.PaymentTransaction
	if err := r.db.Preload("Order").Where("app_trans_id = ?", appTransID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// GetLatestByOrder 获取订单最近一笔支付流水
func (r *GormPaymentRepository) GetLatestByOrder(orderID uint) (*models.PaymentTransaction, error) {
	if orderID == 0 {
		return nil, errors.New("invalid order id")
	}
	var item models.PaymentTransaction
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// List 查询支付流水列表
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.PaymentTransaction, int64, error) {
	query := r.db.Model(&models.PaymentTransaction{})

	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var items []models.PaymentTransaction
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update 更新支付流水
func (r *GormPaymentRepository) Update(item *models.PaymentTransaction) error {
	if item == nil {
		return errors.New("payment is nil")
	}
	return r.db.Save(item).Error
}

// MarkSuccessIf 条件置为成功。仅非成功流水可标记，重复回调返回 0 行。
func (r *GormPaymentRepository) MarkSuccessIf(id uint, zpTransID string, payload models.JSON, callbackAt time.Time) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid payment id")
	}
	result := r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status <> ?", id, constants.PaymentStatusSuccess).
		Updates(map[string]interface{}{
			"status":           constants.PaymentStatusSuccess,
			"zp_trans_id":      zpTransID,
			"provider_payload": payload,
			"callback_at":      callbackAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkFailed 置为失败
func (r *GormPaymentRepository) MarkFailed(id uint, payload models.JSON) error {
	if id == 0 {
		return errors.New("invalid payment id")
	}
	return r.db.Model(&models.PaymentTransaction{}).
		Where("id = ? AND status <> ?", id, constants.PaymentStatusSuccess).
		Updates(map[string]interface{}{
			"status":           constants.PaymentStatusFailed,
			"provider_payload": payload,
		}).Error
}
