package domain

import "time"

type CreateProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	Variant        *string         `json:"variant"`
	Supplier       *string         `json:"supplier"`
	UnitCost       float64         `json:"unit_cost" validate:"gte=0"`
	BasePrice      float64         `json:"base_price" validate:"gte=0"`
	Fees           float64         `json:"fees" validate:"gte=0"`
	SourcingStatus *SourcingStatus `json:"sourcing_status" validate:"omitempty,oneof='in progress' negotiation complete 'MOQ required' price failed"`
	UnitsSold      int             `json:"units_sold" validate:"gte=0"`
}

// UpdateProductRequest não aceita os campos derivados (units_sold, total_sales, profit_margin)
type UpdateProductRequest struct {
	Name           *string         `json:"name" validate:"omitempty,min=1"`
	Variant        *string         `json:"variant"`
	Supplier       *string         `json:"supplier"`
	UnitCost       *float64        `json:"unit_cost" validate:"omitempty,gte=0"`
	BasePrice      *float64        `json:"base_price" validate:"omitempty,gte=0"`
	Fees           *float64        `json:"fees" validate:"omitempty,gte=0"`
	SourcingStatus *SourcingStatus `json:"sourcing_status" validate:"omitempty,oneof='in progress' negotiation complete 'MOQ required' price failed"`
}

type SaleRequest struct {
	Date          *time.Time `json:"date"`
	UnitsSold     int        `json:"units_sold" validate:"gt=0"`
	Revenue       *float64   `json:"revenue" validate:"omitempty,gte=0"`
	Notes         string     `json:"notes"`
	TransactionID string     `json:"transaction_id"`
}
