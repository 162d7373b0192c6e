package insighting

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository/mocks"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"go.uber.org/mock/gomock"
)

const ownerID = 7

// memoryCache guarda os snapshots em memória
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]domain.DashboardSnapshot
	generations map[string]int64
	getErr      error
	sets        int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries:     make(map[string]domain.DashboardSnapshot),
		generations: make(map[string]int64),
	}
}

func (c *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return false, c.getErr
	}

	snapshot, ok := c.entries[key]
	if !ok {
		return false, nil
	}

	*dest.(*domain.DashboardSnapshot) = snapshot
	return true, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = *value.(*domain.DashboardSnapshot)
	c.sets++
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *memoryCache) Generation(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key], nil
}

func (c *memoryCache) BumpGeneration(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	return c.generations[key], nil
}

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockProductRepository, *mocks.MockGoalRepository) {
	productRepo := mocks.NewMockProductRepository(ctrl)
	goalRepo := mocks.NewMockGoalRepository(ctrl)

	service := NewService(productRepo, goalRepo)
	service.now = func() time.Time { return referenceNow }

	return service, productRepo, goalRepo
}

func TestService_GetDashboard(t *testing.T) {
	t.Run("Sem cache calcula a partir dos produtos", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, productRepo, _ := newTestService(ctrl)
		productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return([]*domain.Product{scenarioProduct()}, nil)

		snapshot, err := service.GetDashboard(context.Background(), ownerID, "week")

		require.NoError(t, err)
		assert.Equal(t, domain.TimeframeWeek, snapshot.Timeframe)
		assert.InDelta(t, 80.0, snapshot.TotalRevenue, 0.001)
		assert.Equal(t, 8, snapshot.UnitsSold)
	})

	t.Run("Segunda chamada é servida pelo cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, productRepo, _ := newTestService(ctrl)
		cache := newMemoryCache()
		service.WithCache(cache)

		productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return([]*domain.Product{scenarioProduct()}, nil).Times(1)

		first, err := service.GetDashboard(context.Background(), ownerID, "week")
		require.NoError(t, err)

		second, err := service.GetDashboard(context.Background(), ownerID, "week")
		require.NoError(t, err)

		assert.Equal(t, first.TotalRevenue, second.TotalRevenue)
		assert.Equal(t, 1, cache.sets)
		assert.Contains(t, cache.entries, "dashboard:7:week:v0")
	})

	t.Run("Snapshot calculado antes de uma invalidação não é servido depois dela", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, productRepo, _ := newTestService(ctrl)
		cache := newMemoryCache()
		service.WithCache(cache)

		withNewSale := scenarioProduct()
		withNewSale.SalesHistory = append(withNewSale.SalesHistory, domain.SaleRecord{
			ID:        "nova",
			Date:      referenceNow.Add(-time.Hour),
			UnitsSold: 10,
			Revenue:   1000,
		})

		gomock.InOrder(
			// a venda é gravada e o cache invalidado enquanto o primeiro cálculo ainda está em andamento
			productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).DoAndReturn(func(ctx context.Context, _ int) ([]*domain.Product, error) {
				service.InvalidateOwner(ctx, ownerID)
				return []*domain.Product{scenarioProduct()}, nil
			}),
			productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return([]*domain.Product{withNewSale}, nil),
		)

		stale, err := service.GetDashboard(context.Background(), ownerID, "week")
		require.NoError(t, err)
		assert.InDelta(t, 80.0, stale.TotalRevenue, 0.001)

		fresh, err := service.GetDashboard(context.Background(), ownerID, "week")
		require.NoError(t, err)
		assert.InDelta(t, 1080.0, fresh.TotalRevenue, 0.001)
	})

	t.Run("Erro de leitura do cache recalcula o snapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, productRepo, _ := newTestService(ctrl)
		cache := newMemoryCache()
		cache.getErr = errors.New("redis indisponível")
		service.WithCache(cache)

		productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return([]*domain.Product{scenarioProduct()}, nil)

		snapshot, err := service.GetDashboard(context.Background(), ownerID, "week")

		require.NoError(t, err)
		assert.InDelta(t, 80.0, snapshot.TotalRevenue, 0.001)
	})

	t.Run("Erro do repositório é propagado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, productRepo, _ := newTestService(ctrl)
		productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return(nil, errors.New("timeout"))

		snapshot, err := service.GetDashboard(context.Background(), ownerID, "week")

		assert.Error(t, err)
		assert.Nil(t, snapshot)
	})
}

func TestService_InvalidateOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _, _ := newTestService(ctrl)
	cache := newMemoryCache()
	service.WithCache(cache)

	cache.entries["dashboard:7:week:v0"] = domain.DashboardSnapshot{}
	cache.entries["dashboard:7:month:v0"] = domain.DashboardSnapshot{}
	cache.entries["dashboard:8:week:v0"] = domain.DashboardSnapshot{}

	service.InvalidateOwner(context.Background(), ownerID)

	assert.NotContains(t, cache.entries, "dashboard:7:week:v0")
	assert.NotContains(t, cache.entries, "dashboard:7:month:v0")
	assert.Contains(t, cache.entries, "dashboard:8:week:v0")
	assert.Equal(t, int64(1), cache.generations["dashboard-gen:7"])
	assert.Zero(t, cache.generations["dashboard-gen:8"])
}

func TestService_GetStats(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, productRepo, goalRepo := newTestService(ctrl)

	product := scenarioProduct()
	product.SourcingStatus = domain.SourcingStatusComplete

	negotiating := &domain.Product{ID: "prod-2", Name: "Caneca", SourcingStatus: domain.SourcingStatusNegotiation}

	goals := []*domain.Goal{
		{
			ID:           "meta-vendas-antiga",
			Type:         domain.GoalTypeSales,
			TargetAmount: 10,
			StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           "meta-faturamento",
			Type:         domain.GoalTypeRevenue,
			TargetAmount: 160,
			StartDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
	}

	productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return([]*domain.Product{product, negotiating}, nil)
	goalRepo.EXPECT().
		ListGoals(gomock.Any(), ownerID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int, filters domain.GoalFilters) ([]*domain.Goal, error) {
			require.NotNil(t, filters.IsProductSpecific)
			assert.False(t, *filters.IsProductSpecific)
			return goals, nil
		})

	stats, err := service.GetStats(context.Background(), ownerID, "week")

	require.NoError(t, err)

	assert.InDelta(t, 80.0, stats.Metrics.Revenue, 0.001)
	assert.InDelta(t, 56.0, stats.Metrics.Profit, 0.001)
	assert.Equal(t, 8, stats.Metrics.UnitsSold)
	assert.InDelta(t, 70.0, stats.Metrics.ProfitMargin, 0.001)
	assert.InDelta(t, 10.0, stats.Metrics.AverageOrderValue, 0.001)

	assert.Equal(t, 2, stats.Products.Total)
	assert.Equal(t, 1, stats.Products.ByStatus[domain.SourcingStatusComplete])
	assert.Equal(t, 1, stats.Products.ByStatus[domain.SourcingStatusNegotiation])

	require.NotNil(t, stats.Goals.Revenue.GoalID)
	assert.Equal(t, "meta-faturamento", *stats.Goals.Revenue.GoalID)
	assert.InDelta(t, 50.0, *stats.Goals.Revenue.Progress, 0.001)

	// A meta de vendas já terminou antes do início do período
	assert.Nil(t, stats.Goals.Sales.GoalID)
	assert.Nil(t, stats.Goals.Sales.Progress)
	assert.InDelta(t, 8.0, stats.Goals.Sales.Current, 0.001)
}
