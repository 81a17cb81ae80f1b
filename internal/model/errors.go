package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidRule      = errors.New("invalid rule")
	ErrDuplicateScope   = errors.New("duplicate scope for charge kind")
	ErrDuplicateCode    = errors.New("duplicate currency code")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrInvalidRateValue = errors.New("invalid rate value")
	ErrSourceTimeout    = errors.New("rate source timeout")
)
