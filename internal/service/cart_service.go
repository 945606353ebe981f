package service

import (
	"github.com/laptop-next/internal/models"
	"github.com/laptop-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartDetail 购物车详情（用于响应）
type CartDetail struct {
	UserID      uint              `json:"user_id"`
	Items       []models.CartItem `json:"items"`
	TotalAmount models.Money      `json:"total_amount"`
}

// AddCartItemInput 添加购物车输入
type AddCartItemInput struct {
	UserID    uint
	VariantID uint
	Quantity  int
}

// CartService 购物车服务。条目携带加入时刻的价格与商品快照，
// 后续不随目录变价调整。
type CartService struct {
	cartRepo    repository.CartRepository
	variantRepo repository.VariantRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, variantRepo repository.VariantRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		variantRepo: variantRepo,
	}
}

// Get 获取用户购物车。无车时返回空车对象而非错误。
func (s *CartService) Get(userID uint) (*CartDetail, error) {
	if userID == 0 {
		return nil, ErrInvalidCartItem
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &CartDetail{
			UserID:      userID,
			Items:       []models.CartItem{},
			TotalAmount: models.NewMoneyFromDecimal(decimal.Zero),
		}, nil
	}
	return &CartDetail{
		UserID:      userID,
		Items:       cart.Items,
		TotalAmount: cart.TotalAmount,
	}, nil
}

// AddItem 添加商品到购物车。同一规格重复添加时数量累加，
// 价格与商品信息在首次加入时快照。
func (s *CartService) AddItem(input AddCartItemInput) error {
	if input.UserID == 0 || input.VariantID == 0 || input.Quantity < 1 {
		return ErrInvalidCartItem
	}
	variant, err := s.variantRepo.GetByID(input.VariantID)
	if err != nil {
		return err
	}
	if variant == nil {
		return ErrVariantNotFound
	}
	if !variant.IsActive || (variant.Product != nil && !variant.Product.IsActive) {
		return ErrProductNotAvailable
	}

	cart, err := s.cartRepo.GetOrCreateByUser(input.UserID)
	if err != nil {
		return err
	}

	// 累加走单条 UPDATE，新建撞唯一索引时退回累加，并发添加不丢数量
	return models.DB.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		affected, err := cartRepo.IncrementItemQuantity(cart.ID, input.VariantID, input.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			productName := ""
			productImage := ""
			if variant.Product != nil {
				productName = variant.Product.Name
				productImage = variant.Product.MainImage()
			}
			item := &models.CartItem{
				CartID:         cart.ID,
				VariantID:      input.VariantID,
				Quantity:       input.Quantity,
				UnitPrice:      variant.PriceAmount,
				ProductName:    productName,
				ProductImage:   productImage,
				AttributesJSON: variant.AttributesJSON,
			}
			if createErr := cartRepo.CreateItem(item); createErr != nil {
				affected, err = cartRepo.IncrementItemQuantity(cart.ID, input.VariantID, input.Quantity)
				if err != nil {
					return err
				}
				if affected == 0 {
					return createErr
				}
			}
		}
		return s.recomputeTotalWith(cartRepo, cart.ID)
	})
}

// UpdateQuantity 设置条目数量。数量小于等于 0 时删除该条目。
func (s *CartService) UpdateQuantity(userID, variantID uint, quantity int) error {
	if userID == 0 || variantID == 0 {
		return ErrInvalidCartItem
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartNotFound
	}
	item, err := s.cartRepo.GetItem(cart.ID, variantID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrCartNotFound
	}
	if quantity <= 0 {
		if err := s.cartRepo.DeleteItem(cart.ID, variantID); err != nil {
			return err
		}
		return s.recomputeTotal(cart.ID)
	}
	item.Quantity = quantity
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return err
	}
	return s.recomputeTotal(cart.ID)
}

// RemoveItem 移除条目。条目不存在时静默成功，购物车不存在时报 NotFound。
func (s *CartService) RemoveItem(userID, variantID uint) error {
	if userID == 0 || variantID == 0 {
		return ErrInvalidCartItem
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return ErrCartNotFound
	}
	if err := s.cartRepo.DeleteItem(cart.ID, variantID); err != nil {
		return err
	}
	return s.recomputeTotal(cart.ID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrInvalidCartItem
	}
	cart, err := s.cartRepo.GetByUser(userID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	if _, err := s.cartRepo.ClearItems(cart.ID); err != nil {
		return err
	}
	return s.cartRepo.UpdateTotal(cart.ID, models.NewMoneyFromDecimal(decimal.Zero))
}

// recomputeTotal 按快照单价重算购物车总额并落库
func (s *CartService) recomputeTotal(cartID uint) error {
	return s.recomputeTotalWith(s.cartRepo, cartID)
}

func (s *CartService) recomputeTotalWith(repo repository.CartRepository, cartID uint) error {
	cart, err := repo.GetByID(cartID)
	if err != nil {
		return err
	}
	if cart == nil {
		return nil
	}
	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return repo.UpdateTotal(cartID, models.NewMoneyFromDecimal(total))
}
