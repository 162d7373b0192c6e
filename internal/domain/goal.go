package domain

import "time"

type GoalType string

const (
	GoalTypeRevenue      GoalType = "revenue"
	GoalTypeSales        GoalType = "sales"
	GoalTypeProfit       GoalType = "profit"
	GoalTypeProfitMargin GoalType = "profit_margin"
)

func (t GoalType) IsValid() bool {
	switch t {
	case GoalTypeRevenue, GoalTypeSales, GoalTypeProfit, GoalTypeProfitMargin:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusOnTrack    GoalStatus = "on-track"
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusAtRisk     GoalStatus = "at-risk"
)

type Goal struct {
	ID                string    `json:"id"`
	OwnerID           int       `json:"owner_id"`
	ProductID         *string   `json:"product_id"`
	Name              string    `json:"name"`
	Type              GoalType  `json:"type"`
	TargetAmount      float64   `json:"target_amount"`
	CurrentAmount     float64   `json:"current_amount"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	IsProductSpecific bool      `json:"is_product_specific"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GoalProgress é o progresso calculado de uma meta
type GoalProgress struct {
	CurrentAmount      float64    `json:"current_amount"`
	ProgressPercentage float64    `json:"progress_percentage"`
	Status             GoalStatus `json:"status"`
}

// GoalWithProgress é a meta com o progresso anexado, usada na rota de status
type GoalWithProgress struct {
	*Goal
	ProgressPercentage float64    `json:"progress_percentage"`
	Status             GoalStatus `json:"status"`
}

type GoalFilters struct {
	IsProductSpecific *bool
	ProductID         *string
}

type CreateGoalRequest struct {
	Name              string    `json:"name" validate:"required"`
	Type              GoalType  `json:"type" validate:"required,oneof=revenue sales profit profit_margin"`
	TargetAmount      float64   `json:"target_amount" validate:"gt=0"`
	CurrentAmount     float64   `json:"current_amount" validate:"gte=0"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	IsProductSpecific bool      `json:"is_product_specific"`
	ProductID         *string   `json:"product_id" validate:"required_if=IsProductSpecific true"`
}

type UpdateGoalRequest struct {
	Name              *string    `json:"name" validate:"omitempty,min=1"`
	Type              *GoalType  `json:"type" validate:"omitempty,oneof=revenue sales profit profit_margin"`
	TargetAmount      *float64   `json:"target_amount" validate:"omitempty,gt=0"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	IsProductSpecific *bool      `json:"is_product_specific"`
	ProductID         *string    `json:"product_id"`
}

type UpdateGoalProgressRequest struct {
	CurrentAmount *float64 `json:"current_amount" validate:"required,gte=0"`
}
