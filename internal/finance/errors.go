package finance

import "errors"

var (
	ErrInvalidKind      = errors.New("unknown finance kind")
	ErrCategoryRequired = errors.New("category is required")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCurrencyRequired = errors.New("currency code is required")
	ErrValueInvalid     = errors.New("value must be positive")
	ErrCategoriesNotSet = errors.New("categories not found for user")
)
