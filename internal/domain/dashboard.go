package domain

import "time"

type Timeframe string

const (
	TimeframeDay     Timeframe = "day"
	TimeframeWeek    Timeframe = "week"
	TimeframeMonth   Timeframe = "month"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeYear    Timeframe = "year"
)

type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// DashboardSnapshot é o resultado calculado do dashboard para um período. Não é persistido.
// Os campos *Change são nil quando não há dados suficientes no período anterior.
type DashboardSnapshot struct {
	Timeframe     Timeframe        `json:"timeframe"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	Granularity   Granularity      `json:"granularity"`
	TotalRevenue  float64          `json:"total_revenue"`
	TotalProfit   float64          `json:"total_profit"`
	UnitsSold     int              `json:"units_sold"`
	RevenueChange *int             `json:"revenue_change"`
	ProfitChange  *int             `json:"profit_change"`
	UnitsChange   *int             `json:"units_change"`
	RevenueTrend  Trend            `json:"revenue_trend"`
	ProfitTrend   Trend            `json:"profit_trend"`
	UnitsTrend    Trend            `json:"units_trend"`
	SalesData     []SalesDataPoint `json:"sales_data"`
	ProductCount  int              `json:"product_count"`
	TopProducts   []TopProduct     `json:"top_products"`
}

type SalesDataPoint struct {
	Date      string    `json:"date"`
	Timestamp time.Time `json:"timestamp"`
	Revenue   float64   `json:"revenue"`
	Profit    float64   `json:"profit"`
}

type TopProduct struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TotalSales float64 `json:"total_sales"`
	UnitsSold  int     `json:"units_sold"`
	Profit     float64 `json:"profit"`
}

// DashboardStats é o resumo exibido nos cards do dashboard
type DashboardStats struct {
	Timeframe Timeframe     `json:"timeframe"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Metrics   StatsMetrics  `json:"metrics"`
	Products  StatsProducts `json:"products"`
	Goals     StatsGoals    `json:"goals"`
}

type StatsMetrics struct {
	Revenue           float64 `json:"revenue"`
	Profit            float64 `json:"profit"`
	UnitsSold         int     `json:"units_sold"`
	ProfitMargin      float64 `json:"profit_margin"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type StatsProducts struct {
	Total    int                    `json:"total"`
	ByStatus map[SourcingStatus]int `json:"by_status"`
}

type StatsGoals struct {
	Revenue StatsGoal `json:"revenue"`
	Sales   StatsGoal `json:"sales"`
}

// StatsGoal traz a primeira meta ativa do tipo. Goal e Progress são nil quando não há meta.
type StatsGoal struct {
	GoalID   *string  `json:"goal_id"`
	Goal     *float64 `json:"goal"`
	Current  float64  `json:"current"`
	Progress *float64 `json:"progress"`
}

// GoalSyncResult é o resultado da sincronização das metas com o dashboard
type GoalSyncResult struct {
	Goals    []*Goal           `json:"goals"`
	Updated  bool              `json:"updated"`
	Failures []GoalSyncFailure `json:"failures,omitempty"`
}

type GoalSyncFailure struct {
	GoalID string `json:"goal_id"`
	Error  string `json:"error"`
}
