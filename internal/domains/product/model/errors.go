package model

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEmptySKU        = errors.New("product sku is empty")
	ErrDuplicateSKU    = errors.New("another product already uses this sku")
)
