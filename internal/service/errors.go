package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageDisabled    = errors.New("image storage is not configured")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product unavailable")
)
