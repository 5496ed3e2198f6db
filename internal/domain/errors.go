package domain

import "errors"

var (
	ErrNotFound     = errors.New("product not found")
	ErrInvalidURL   = errors.New("invalid product url")
	ErrDuplicateURL = errors.New("product url already tracked")
	ErrInvalidPrice = errors.New("scraped price is not positive")
)
