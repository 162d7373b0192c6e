package tracking

import (
	"github.com/vfg2006/shop-ops-api/internal/domain"
)

// Metrics são os valores que alimentam o progresso de uma meta
type Metrics struct {
	Revenue      float64
	Sales        float64
	Profit       float64
	ProfitMargin float64
}

// Value seleciona a métrica correspondente ao tipo da meta
func (m Metrics) Value(goalType domain.GoalType) float64 {
	switch goalType {
	case domain.GoalTypeRevenue:
		return m.Revenue
	case domain.GoalTypeSales:
		return m.Sales
	case domain.GoalTypeProfit:
		return m.Profit
	case domain.GoalTypeProfitMargin:
		return m.ProfitMargin
	}
	return 0
}

// StoreMetricsFromSnapshot usa os totais do período calculados pelo dashboard
func StoreMetricsFromSnapshot(snapshot *domain.DashboardSnapshot) Metrics {
	if snapshot == nil {
		return Metrics{}
	}

	metrics := Metrics{
		Revenue: snapshot.TotalRevenue,
		Sales:   float64(snapshot.UnitsSold),
		Profit:  snapshot.TotalProfit,
	}
	if snapshot.TotalRevenue > 0 {
		metrics.ProfitMargin = snapshot.TotalProfit / snapshot.TotalRevenue * 100
	}

	return metrics
}

// StoreMetricsFromProducts soma os campos acumulados de todos os produtos
func StoreMetricsFromProducts(products []*domain.Product) Metrics {
	var metrics Metrics
	for _, product := range products {
		if product == nil {
			continue
		}
		units := float64(product.UnitsSold)
		metrics.Revenue += product.TotalSales
		metrics.Sales += units
		metrics.Profit += product.TotalSales - product.UnitCost*units - product.Fees*units
	}

	if metrics.Revenue > 0 {
		metrics.ProfitMargin = metrics.Profit / metrics.Revenue * 100
	}

	return metrics
}

// ProductMetrics calcula as métricas de um único produto a partir dos seus campos
func ProductMetrics(product *domain.Product) Metrics {
	if product == nil {
		return Metrics{}
	}

	unitProfit := product.UnitProfit()
	metrics := Metrics{
		Revenue: product.TotalSales,
		Sales:   float64(product.UnitsSold),
		Profit:  unitProfit * float64(product.UnitsSold),
	}
	if product.BasePrice > 0 {
		metrics.ProfitMargin = unitProfit / product.BasePrice * 100
	}

	return metrics
}

// ComputeProgress calcula o valor atual, o percentual limitado a [0, 100] e o status da meta
func ComputeProgress(goal *domain.Goal, metrics Metrics) domain.GoalProgress {
	return ProgressFromAmount(goal, metrics.Value(goal.Type))
}

// ProgressFromAmount calcula o progresso para um valor atual já conhecido
func ProgressFromAmount(goal *domain.Goal, currentAmount float64) domain.GoalProgress {
	percentage := 0.0
	if goal.TargetAmount > 0 {
		percentage = currentAmount / goal.TargetAmount * 100
	}
	percentage = max(0, min(100, percentage))

	return domain.GoalProgress{
		CurrentAmount:      currentAmount,
		ProgressPercentage: percentage,
		Status:             StatusFor(percentage),
	}
}

func StatusFor(percentage float64) domain.GoalStatus {
	switch {
	case percentage >= 100:
		return domain.GoalStatusCompleted
	case percentage >= 75:
		return domain.GoalStatusOnTrack
	case percentage >= 50:
		return domain.GoalStatusInProgress
	default:
		return domain.GoalStatusAtRisk
	}
}

// MetricsForGoal escolhe a fonte das métricas pelo escopo da meta.
// Meta de produto sem produto correspondente tem métricas zeradas.
func MetricsForGoal(goal *domain.Goal, store Metrics, products map[string]*domain.Product) Metrics {
	if !goal.IsProductSpecific {
		return store
	}

	if goal.ProductID == nil {
		return Metrics{}
	}

	product, ok := products[*goal.ProductID]
	if !ok {
		return Metrics{}
	}

	return ProductMetrics(product)
}
