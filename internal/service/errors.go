package service

import "errors"

// Typed failures the handlers translate to HTTP statuses. Business-rule
// rejections leave persisted state untouched.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrProductNotFound      = errors.New("product not found")
	ErrLocationNotFound     = errors.New("location not found")
	ErrStockNotFound        = errors.New("stock not found")
	ErrSupplierNotFound     = errors.New("supplier not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrDuplicateSKU         = errors.New("SKU already exists")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrInsufficientStock    = errors.New("insufficient stock")
	// ErrConflict means a concurrent writer raced the atomic unit past the
	// retry budget. The movement did not commit; the caller may retry.
	ErrConflict = errors.New("conflicting concurrent update, please retry")
)
