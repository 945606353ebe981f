package service

import "errors"

// 业务语义错误。handler 层通过 errors.Is 映射为响应码。
var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrProductNotAvailable  = errors.New("product not available")
	ErrInvalidCartItem      = errors.New("invalid cart item")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrShippingInvalid      = errors.New("shipping info invalid")
	ErrPaymentMethodInvalid = errors.New("payment method invalid")
	ErrOrderStatusInvalid   = errors.New("order status invalid")

	ErrStockInsufficient  = errors.New("stock insufficient")
	ErrOrderStateConflict = errors.New("order state conflict")
	ErrOrderStateTerminal = errors.New("order state terminal")
	ErrOrderNotPaid       = errors.New("order not paid")
	ErrCheckoutInProgress = errors.New("checkout in progress")

	ErrPaymentSignatureInvalid = errors.New("payment signature invalid")
	ErrPaymentGateway          = errors.New("payment gateway error")
	ErrPaymentAmountMismatch   = errors.New("payment amount mismatch")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooWeak    = errors.New("password too weak")
)
