package tracking

import (
	"context"
	"math"

	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/log"
)

// Tolerância para métricas em moeda e percentual
const amountTolerance = 0.01

// Syncer grava o valor atual das metas somente quando ele mudou
type Syncer struct {
	goalRepository repository.GoalRepository
}

func NewSyncer(goalRepo repository.GoalRepository) *Syncer {
	return &Syncer{goalRepository: goalRepo}
}

// SyncWithDashboard recalcula as metas da loja com os totais do snapshot.
// Metas de produto são retornadas sem alteração. Falhas de gravação não interrompem as demais metas.
func (s *Syncer) SyncWithDashboard(ctx context.Context, goals []*domain.Goal, snapshot *domain.DashboardSnapshot) domain.GoalSyncResult {
	metrics := StoreMetricsFromSnapshot(snapshot)

	result := domain.GoalSyncResult{
		Goals: make([]*domain.Goal, 0, len(goals)),
	}

	for _, goal := range goals {
		if goal == nil {
			continue
		}

		if goal.IsProductSpecific {
			result.Goals = append(result.Goals, goal)
			continue
		}

		current := metrics.Value(goal.Type)
		if !changed(goal.Type, goal.CurrentAmount, current) {
			result.Goals = append(result.Goals, goal)
			continue
		}

		updated, err := s.write(ctx, goal, current)
		if err != nil {
			result.Failures = append(result.Failures, domain.GoalSyncFailure{GoalID: goal.ID, Error: err.Error()})
			result.Goals = append(result.Goals, goal)
			continue
		}

		result.Updated = true
		result.Goals = append(result.Goals, updated)
	}

	return result
}

// SyncWithMetrics aplica a mesma regra de alteração usando as métricas informadas para todas as metas
func (s *Syncer) SyncWithMetrics(ctx context.Context, goals []*domain.Goal, metrics Metrics) domain.GoalSyncResult {
	result := domain.GoalSyncResult{
		Goals: make([]*domain.Goal, 0, len(goals)),
	}

	for _, goal := range goals {
		current := metrics.Value(goal.Type)
		if !changed(goal.Type, goal.CurrentAmount, current) {
			result.Goals = append(result.Goals, goal)
			continue
		}

		updated, err := s.write(ctx, goal, current)
		if err != nil {
			result.Failures = append(result.Failures, domain.GoalSyncFailure{GoalID: goal.ID, Error: err.Error()})
			result.Goals = append(result.Goals, goal)
			continue
		}

		result.Updated = true
		result.Goals = append(result.Goals, updated)
	}

	return result
}

func (s *Syncer) write(ctx context.Context, goal *domain.Goal, current float64) (*domain.Goal, error) {
	if err := s.goalRepository.UpdateCurrentAmount(ctx, goal.ID, current); err != nil {
		log.ForContext(ctx).WithFields(log.Fields{
			"goal_id": goal.ID,
			"type":    goal.Type,
		}).WithError(err).Error("metas: erro ao atualizar valor atual")
		return nil, err
	}

	updated := *goal
	updated.CurrentAmount = current
	return &updated, nil
}

// changed compara com tolerância, exceto para vendas que são contagens inteiras
func changed(goalType domain.GoalType, stored, current float64) bool {
	if goalType == domain.GoalTypeSales {
		return stored != current
	}
	return math.Abs(stored-current) > amountTolerance
}
