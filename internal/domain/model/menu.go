package model

import "github.com/shopspring/decimal"

// MenuItem is a dish offered by the menu service.
type MenuItem struct {
	ID          int64           `json:"itemId"`
	CategoryID  int64           `json:"categoryId"`
	Name        string          `json:"itemName"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"isAvailable"`
}

// Category groups menu items.
type Category struct {
	ID           int64  `json:"categoryId"`
	Name         string `json:"categoryName"`
	Description  string `json:"description,omitempty"`
	Active       bool   `json:"isActive"`
	DisplayOrder int    `json:"displayOrder"`
}
