package domain

import "time"

type ProductRankingResponse struct {
	Timeframe Timeframe            `json:"timeframe"`
	StartDate time.Time            `json:"start_date"`
	EndDate   time.Time            `json:"end_date"`
	Ranking   []ProductRankingItem `json:"ranking"`
}

type ProductRankingItem struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Revenue          float64 `json:"revenue"`
	UnitsSold        int     `json:"units_sold"`
	Position         int     `json:"position"`
	PositionChange   int     `json:"position_change"` // Valor positivo = subiu, negativo = desceu, 0 = manteve
	PreviousPosition int     `json:"previous_position"`
}
