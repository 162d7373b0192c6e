package insighting

import (
	"context"

	"github.com/vfg2006/shop-ops-api/internal/domain"
)

// Insighter expõe as métricas agregadas do dashboard de um proprietário
type Insighter interface {
	// GetDashboard agrega as vendas do período com comparação ao período anterior
	GetDashboard(ctx context.Context, ownerID int, timeframe string) (*domain.DashboardSnapshot, error)

	// GetStats retorna o resumo do período com margem, ticket médio e metas ativas
	GetStats(ctx context.Context, ownerID int, timeframe string) (*domain.DashboardStats, error)
}

// DashboardInvalidator descarta os snapshots em cache de um proprietário
type DashboardInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID int)
}

// SnapshotCache é o cache-aside usado para os snapshots do dashboard.
// O contador de versão por proprietário invalida snapshots gravados por cálculos concorrentes.
type SnapshotCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeletePattern(ctx context.Context, pattern string) error
	Generation(ctx context.Context, key string) (int64, error)
	BumpGeneration(ctx context.Context, key string) (int64, error)
}
