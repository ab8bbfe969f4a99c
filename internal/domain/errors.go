package domain

import "errors"

var (
	ErrInvalidSaleType     = errors.New("invalid sale type")
	ErrInvalidDiscountKind = errors.New("invalid discount kind")
)
