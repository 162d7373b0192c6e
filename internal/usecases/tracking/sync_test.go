package tracking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository/mocks"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"go.uber.org/mock/gomock"
)

func TestSyncWithDashboard(t *testing.T) {
	snapshot := &domain.DashboardSnapshot{TotalRevenue: 1000, TotalProfit: 250, UnitsSold: 40}

	tests := []struct {
		name        string
		goals       []*domain.Goal
		setup       func(repo *mocks.MockGoalRepository)
		wantUpdated bool
		validate    func(t *testing.T, result domain.GoalSyncResult)
	}{
		{
			name: "Metas de produto nunca devem ser alteradas",
			goals: []*domain.Goal{
				{ID: "g1", Type: domain.GoalTypeRevenue, CurrentAmount: 10, IsProductSpecific: true, ProductID: stringPtr("p1")},
			},
			setup:       func(repo *mocks.MockGoalRepository) {},
			wantUpdated: false,
			validate: func(t *testing.T, result domain.GoalSyncResult) {
				require.Len(t, result.Goals, 1)
				assert.Equal(t, 10.0, result.Goals[0].CurrentAmount)
			},
		},
		{
			name: "Diferença dentro da tolerância não deve gravar",
			goals: []*domain.Goal{
				{ID: "g1", Type: domain.GoalTypeRevenue, CurrentAmount: 999.995},
				{ID: "g2", Type: domain.GoalTypeSales, CurrentAmount: 40},
			},
			setup:       func(repo *mocks.MockGoalRepository) {},
			wantUpdated: false,
			validate: func(t *testing.T, result domain.GoalSyncResult) {
				require.Len(t, result.Goals, 2)
				assert.Equal(t, 999.995, result.Goals[0].CurrentAmount)
			},
		},
		{
			name: "Metas alteradas devem ser gravadas e retornadas com o novo valor",
			goals: []*domain.Goal{
				{ID: "g1", Type: domain.GoalTypeRevenue, CurrentAmount: 500},
				{ID: "g2", Type: domain.GoalTypeProfitMargin, CurrentAmount: 0},
				{ID: "g3", Type: domain.GoalTypeSales, CurrentAmount: 40},
			},
			setup: func(repo *mocks.MockGoalRepository) {
				repo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g1", 1000.0).Return(nil)
				repo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g2", 25.0).Return(nil)
			},
			wantUpdated: true,
			validate: func(t *testing.T, result domain.GoalSyncResult) {
				require.Len(t, result.Goals, 3)
				assert.Equal(t, 1000.0, result.Goals[0].CurrentAmount)
				assert.Equal(t, 25.0, result.Goals[1].CurrentAmount)
				assert.Equal(t, 40.0, result.Goals[2].CurrentAmount)
				assert.Empty(t, result.Failures)
			},
		},
		{
			name: "Falha em uma meta não deve impedir as demais",
			goals: []*domain.Goal{
				{ID: "g1", Type: domain.GoalTypeRevenue, CurrentAmount: 500},
				{ID: "g2", Type: domain.GoalTypeProfit, CurrentAmount: 0},
			},
			setup: func(repo *mocks.MockGoalRepository) {
				repo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g1", 1000.0).Return(errors.New("conexão perdida"))
				repo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g2", 250.0).Return(nil)
			},
			wantUpdated: true,
			validate: func(t *testing.T, result domain.GoalSyncResult) {
				require.Len(t, result.Goals, 2)
				assert.Equal(t, 500.0, result.Goals[0].CurrentAmount)
				assert.Equal(t, 250.0, result.Goals[1].CurrentAmount)
				require.Len(t, result.Failures, 1)
				assert.Equal(t, "g1", result.Failures[0].GoalID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := mocks.NewMockGoalRepository(ctrl)
			tt.setup(repo)

			result := NewSyncer(repo).SyncWithDashboard(context.Background(), tt.goals, snapshot)

			assert.Equal(t, tt.wantUpdated, result.Updated)
			tt.validate(t, result)
		})
	}
}

func TestSyncWithDashboard_NaoAlteraMetaOriginal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockGoalRepository(ctrl)
	repo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g1", 30.0).Return(nil)

	goal := &domain.Goal{ID: "g1", Type: domain.GoalTypeSales, CurrentAmount: 29}
	result := NewSyncer(repo).SyncWithDashboard(context.Background(), []*domain.Goal{goal}, &domain.DashboardSnapshot{UnitsSold: 30})

	assert.Equal(t, 29.0, goal.CurrentAmount)
	assert.Equal(t, 30.0, result.Goals[0].CurrentAmount)
}
