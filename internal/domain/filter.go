package domain

import "github.com/shopspring/decimal"

// ProductFilter holds optional catalog criteria; zero values are ignored.
type ProductFilter struct {
	Name     string
	SKU      string
	Category string // category name fragment
	Supplier string // supplier name fragment
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}
