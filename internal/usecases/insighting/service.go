package insighting

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/log"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	productRepository repository.ProductRepository
	goalRepository    repository.GoalRepository
	cache             SnapshotCache
	sfGroup           singleflight.Group
	now               func() time.Time
}

func NewService(
	productRepo repository.ProductRepository,
	goalRepo repository.GoalRepository,
) *Service {
	return &Service{
		productRepository: productRepo,
		goalRepository:    goalRepo,
		now:               time.Now,
	}
}

// WithCache habilita o cache dos snapshots do dashboard
func (s *Service) WithCache(cache SnapshotCache) *Service {
	s.cache = cache
	return s
}

func dashboardCacheKey(ownerID int, timeframe domain.Timeframe, generation int64) string {
	return fmt.Sprintf("dashboard:%d:%s:v%d", ownerID, timeframe, generation)
}

func dashboardGenerationKey(ownerID int) string {
	return fmt.Sprintf("dashboard-gen:%d", ownerID)
}

// generation lê a versão atual dos snapshots do proprietário.
// Retorna false quando o cache não deve ser usado nesta requisição.
func (s *Service) generation(ctx context.Context, ownerID int) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}

	generation, err := s.cache.Generation(ctx, dashboardGenerationKey(ownerID))
	if err != nil {
		log.ForContext(ctx).WithError(err).Warn("insights: erro ao ler versão do cache, recalculando sem cache")
		return 0, false
	}

	return generation, true
}

func (s *Service) GetDashboard(ctx context.Context, ownerID int, timeframe string) (*domain.DashboardSnapshot, error) {
	logger := log.ForContext(ctx)

	period := ResolvePeriod(timeframe, s.now())

	// A versão é lida antes do cálculo: um snapshot calculado antes de uma invalidação
	// fica gravado sob a versão antiga e não é mais lido.
	generation, cacheable := s.generation(ctx, ownerID)
	key := dashboardCacheKey(ownerID, period.Timeframe, generation)

	if cacheable {
		var cached domain.DashboardSnapshot
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.WithError(err).Warn("insights: erro ao ler snapshot do cache, recalculando")
		}
		if found {
			return &cached, nil
		}
	}

	// Requisições simultâneas do mesmo proprietário e timeframe compartilham o cálculo
	val, err, _ := s.sfGroup.Do(key, func() (any, error) {
		products, err := s.productRepository.ListProducts(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
		}

		snapshot := Rollup(ctx, products, period)

		if cacheable {
			if err := s.cache.Set(ctx, key, snapshot); err != nil {
				logger.WithError(err).Warn("insights: erro ao gravar snapshot no cache")
			}
		}

		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}

	return val.(*domain.DashboardSnapshot), nil
}

func (s *Service) GetStats(ctx context.Context, ownerID int, timeframe string) (*domain.DashboardStats, error) {
	period := ResolvePeriod(timeframe, s.now())

	products, err := s.productRepository.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}

	storeWide := false
	goals, err := s.goalRepository.ListGoals(ctx, ownerID, domain.GoalFilters{IsProductSpecific: &storeWide})
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar metas: %w", err)
	}

	snapshot := Rollup(ctx, products, period)

	stats := &domain.DashboardStats{
		Timeframe: period.Timeframe,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Metrics: domain.StatsMetrics{
			Revenue:   snapshot.TotalRevenue,
			Profit:    snapshot.TotalProfit,
			UnitsSold: snapshot.UnitsSold,
		},
		Products: domain.StatsProducts{
			Total:    snapshot.ProductCount,
			ByStatus: make(map[domain.SourcingStatus]int),
		},
		Goals: domain.StatsGoals{
			Revenue: domain.StatsGoal{Current: snapshot.TotalRevenue},
			Sales:   domain.StatsGoal{Current: float64(snapshot.UnitsSold)},
		},
	}

	stats.Metrics.ProfitMargin = utils.RoundWithTwoDecimalPlace(utils.Percentage(snapshot.TotalProfit, snapshot.TotalRevenue))
	if snapshot.UnitsSold > 0 {
		stats.Metrics.AverageOrderValue = utils.RoundWithTwoDecimalPlace(snapshot.TotalRevenue / float64(snapshot.UnitsSold))
	}

	for _, product := range products {
		stats.Products.ByStatus[product.SourcingStatus]++
	}

	if goal := firstActiveGoal(goals, domain.GoalTypeRevenue, period.StartDate); goal != nil {
		attachStatsGoal(&stats.Goals.Revenue, goal)
	}
	if goal := firstActiveGoal(goals, domain.GoalTypeSales, period.StartDate); goal != nil {
		attachStatsGoal(&stats.Goals.Sales, goal)
	}

	return stats, nil
}

// InvalidateOwner avança a versão dos snapshots do proprietário e remove os já gravados
func (s *Service) InvalidateOwner(ctx context.Context, ownerID int) {
	if s.cache == nil {
		return
	}

	logger := log.ForContext(ctx)
	if _, err := s.cache.BumpGeneration(ctx, dashboardGenerationKey(ownerID)); err != nil {
		logger.WithError(err).Warn("insights: erro ao avançar versão do cache do dashboard")
	}

	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("dashboard:%d:*", ownerID)); err != nil {
		logger.WithError(err).Warn("insights: erro ao invalidar cache do dashboard")
	}
}

func firstActiveGoal(goals []*domain.Goal, goalType domain.GoalType, since time.Time) *domain.Goal {
	for _, goal := range goals {
		if goal.Type == goalType && !goal.EndDate.Before(since) {
			return goal
		}
	}
	return nil
}

func attachStatsGoal(stats *domain.StatsGoal, goal *domain.Goal) {
	target := goal.TargetAmount
	progress := 0.0
	if target > 0 {
		progress = min(100, stats.Current/target*100)
	}

	stats.GoalID = &goal.ID
	stats.Goal = &target
	stats.Progress = &progress
}
