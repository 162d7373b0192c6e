package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository/mocks"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"go.uber.org/mock/gomock"
)

const ownerID = 7

var referenceNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockGoalRepository, *mocks.MockProductRepository) {
	goalRepo := mocks.NewMockGoalRepository(ctrl)
	productRepo := mocks.NewMockProductRepository(ctrl)

	service := NewService(goalRepo, productRepo)
	service.now = func() time.Time { return referenceNow }

	return service, goalRepo, productRepo
}

func TestService_GetProductGoals(t *testing.T) {
	t.Run("Produto sem metas deve receber as três metas padrão", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, productRepo := newTestService(ctrl)

		productRepo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&domain.Product{ID: "p1", OwnerID: ownerID}, nil)
		goalRepo.EXPECT().ListGoals(gomock.Any(), ownerID, gomock.Any()).Return([]*domain.Goal{}, nil)
		goalRepo.EXPECT().CreateGoals(gomock.Any(), gomock.Len(3)).Return(nil)

		goals, err := service.GetProductGoals(context.Background(), ownerID, "p1")
		require.NoError(t, err)
		require.Len(t, goals, 3)

		targets := map[domain.GoalType]float64{}
		for _, goal := range goals {
			targets[goal.Type] = goal.TargetAmount
			assert.True(t, goal.IsProductSpecific)
			assert.Equal(t, "p1", *goal.ProductID)
			assert.Equal(t, referenceNow, goal.StartDate)
			assert.Equal(t, referenceNow.AddDate(0, 1, 0), goal.EndDate)
			assert.NotEmpty(t, goal.ID)
		}

		assert.Equal(t, map[domain.GoalType]float64{
			domain.GoalTypeRevenue: 10000,
			domain.GoalTypeSales:   1000,
			domain.GoalTypeProfit:  4000,
		}, targets)
	})

	t.Run("Produto com metas não deve criar metas padrão", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, productRepo := newTestService(ctrl)

		existing := []*domain.Goal{{ID: "g1", OwnerID: ownerID, IsProductSpecific: true, ProductID: stringPtr("p1")}}
		productRepo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&domain.Product{ID: "p1", OwnerID: ownerID}, nil)
		goalRepo.EXPECT().ListGoals(gomock.Any(), ownerID, gomock.Any()).Return(existing, nil)

		goals, err := service.GetProductGoals(context.Background(), ownerID, "p1")
		require.NoError(t, err)
		assert.Equal(t, existing, goals)
	})

	t.Run("Produto de outro proprietário deve retornar não encontrado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, productRepo := newTestService(ctrl)

		productRepo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(&domain.Product{ID: "p1", OwnerID: 99}, nil)

		_, err := service.GetProductGoals(context.Background(), ownerID, "p1")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_GetGoalsStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, goalRepo, productRepo := newTestService(ctrl)

	goals := []*domain.Goal{
		{ID: "loja", OwnerID: ownerID, Type: domain.GoalTypeRevenue, TargetAmount: 100, CurrentAmount: 3},
		{ID: "produto", OwnerID: ownerID, Type: domain.GoalTypeSales, TargetAmount: 10, IsProductSpecific: true, ProductID: stringPtr("p1")},
		{ID: "removido", OwnerID: ownerID, Type: domain.GoalTypeSales, TargetAmount: 10, CurrentAmount: 9, IsProductSpecific: true, ProductID: stringPtr("p9")},
	}
	products := []*domain.Product{
		{ID: "p1", OwnerID: ownerID, UnitCost: 2, BasePrice: 10, Fees: 1, UnitsSold: 8, TotalSales: 80},
	}

	goalRepo.EXPECT().ListGoals(gomock.Any(), ownerID, domain.GoalFilters{}).Return(goals, nil)
	productRepo.EXPECT().ListProducts(gomock.Any(), ownerID).Return(products, nil)

	result, err := service.GetGoalsStatus(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, 80.0, result[0].CurrentAmount)
	assert.InDelta(t, 80.0, result[0].ProgressPercentage, 0.0001)
	assert.Equal(t, domain.GoalStatusOnTrack, result[0].Status)

	assert.Equal(t, 8.0, result[1].CurrentAmount)
	assert.Equal(t, domain.GoalStatusOnTrack, result[1].Status)

	assert.Equal(t, 0.0, result[2].CurrentAmount)
	assert.Equal(t, domain.GoalStatusAtRisk, result[2].Status)

	// o valor armazenado não é alterado pela consulta de status
	assert.Equal(t, 3.0, goals[0].CurrentAmount)
}

func TestService_CreateGoal(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		req         *domain.CreateGoalRequest
		setup       func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository)
		wantErr     error
		wantInvalid []string
	}{
		{
			name: "Meta da loja válida deve ser criada",
			req: &domain.CreateGoalRequest{
				Name: "Receita de março", Type: domain.GoalTypeRevenue, TargetAmount: 5000,
				StartDate: start, EndDate: end,
			},
			setup: func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository) {
				goalRepo.EXPECT().CreateGoal(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, goal *domain.Goal) (*domain.Goal, error) {
					return goal, nil
				})
			},
		},
		{
			name: "Tipo inválido e alvo zero devem ser rejeitados",
			req: &domain.CreateGoalRequest{
				Name: "Meta", Type: "visits", TargetAmount: 0,
				StartDate: start, EndDate: end,
			},
			setup:       func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository) {},
			wantInvalid: []string{"type", "target_amount"},
		},
		{
			name: "Data final anterior à inicial deve ser rejeitada",
			req: &domain.CreateGoalRequest{
				Name: "Meta", Type: domain.GoalTypeSales, TargetAmount: 10,
				StartDate: end, EndDate: start,
			},
			setup:       func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository) {},
			wantInvalid: []string{"end_date"},
		},
		{
			name: "Meta de produto sem produto deve ser rejeitada",
			req: &domain.CreateGoalRequest{
				Name: "Meta", Type: domain.GoalTypeSales, TargetAmount: 10,
				StartDate: start, EndDate: end, IsProductSpecific: true,
			},
			setup:       func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository) {},
			wantInvalid: []string{"product_id"},
		},
		{
			name: "Meta de produto inexistente deve retornar não encontrado",
			req: &domain.CreateGoalRequest{
				Name: "Meta", Type: domain.GoalTypeSales, TargetAmount: 10,
				StartDate: start, EndDate: end, IsProductSpecific: true, ProductID: stringPtr("p1"),
			},
			setup: func(goalRepo *mocks.MockGoalRepository, productRepo *mocks.MockProductRepository) {
				productRepo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(nil, nil)
			},
			wantErr: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, goalRepo, productRepo := newTestService(ctrl)
			tt.setup(goalRepo, productRepo)

			goal, err := service.CreateGoal(context.Background(), ownerID, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			if len(tt.wantInvalid) > 0 {
				var validationErr *domain.ValidationError
				require.ErrorAs(t, err, &validationErr)
				for _, field := range tt.wantInvalid {
					assert.Contains(t, validationErr.Fields, field)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, ownerID, goal.OwnerID)
			assert.NotEmpty(t, goal.ID)
			assert.Nil(t, goal.ProductID)
		})
	}
}

func TestService_UpdateGoal(t *testing.T) {
	t.Run("Meta de outro proprietário não deve ser alterada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, _ := newTestService(ctrl)
		goalRepo.EXPECT().GetGoalByID(gomock.Any(), "g1").Return(&domain.Goal{ID: "g1", OwnerID: 99}, nil)

		name := "Nova"
		_, err := service.UpdateGoal(context.Background(), ownerID, "g1", &domain.UpdateGoalRequest{Name: &name})
		assert.ErrorIs(t, err, ErrGoalNotAuthorized)
	})

	t.Run("Alteração parcial mantém os demais campos", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, _ := newTestService(ctrl)
		stored := &domain.Goal{
			ID: "g1", OwnerID: ownerID, Name: "Antiga", Type: domain.GoalTypeRevenue, TargetAmount: 100,
			StartDate: referenceNow, EndDate: referenceNow.AddDate(0, 1, 0),
		}
		goalRepo.EXPECT().GetGoalByID(gomock.Any(), "g1").Return(stored, nil)
		goalRepo.EXPECT().UpdateGoal(gomock.Any(), gomock.Any()).Return(nil)

		target := 250.0
		goal, err := service.UpdateGoal(context.Background(), ownerID, "g1", &domain.UpdateGoalRequest{TargetAmount: &target})
		require.NoError(t, err)
		assert.Equal(t, "Antiga", goal.Name)
		assert.Equal(t, 250.0, goal.TargetAmount)
	})

	t.Run("Datas invertidas devem ser rejeitadas", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, _ := newTestService(ctrl)
		goalRepo.EXPECT().GetGoalByID(gomock.Any(), "g1").Return(&domain.Goal{
			ID: "g1", OwnerID: ownerID, StartDate: referenceNow, EndDate: referenceNow.AddDate(0, 1, 0),
		}, nil)

		end := referenceNow.AddDate(0, -1, 0)
		_, err := service.UpdateGoal(context.Background(), ownerID, "g1", &domain.UpdateGoalRequest{EndDate: &end})

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestService_UpdateProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, goalRepo, _ := newTestService(ctrl)
	goalRepo.EXPECT().GetGoalByID(gomock.Any(), "g1").Return(&domain.Goal{ID: "g1", OwnerID: ownerID}, nil)
	goalRepo.EXPECT().UpdateCurrentAmount(gomock.Any(), "g1", 42.5).Return(nil)

	amount := 42.5
	goal, err := service.UpdateProgress(context.Background(), ownerID, "g1", &domain.UpdateGoalProgressRequest{CurrentAmount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 42.5, goal.CurrentAmount)

	_, err = service.UpdateProgress(context.Background(), ownerID, "g1", &domain.UpdateGoalProgressRequest{})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestService_DeleteGoal_NaoEncontrada(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, goalRepo, _ := newTestService(ctrl)
	goalRepo.EXPECT().GetGoalByID(gomock.Any(), "g1").Return(nil, nil)

	err := service.DeleteGoal(context.Background(), ownerID, "g1")
	assert.ErrorIs(t, err, ErrGoalNotFound)
}

func TestService_RefreshProductGoals(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, goalRepo, productRepo := newTestService(ctrl)

	product := &domain.Product{ID: "p1", OwnerID: ownerID, UnitCost: 2, BasePrice: 10, Fees: 1, UnitsSold: 8, TotalSales: 80}
	goals := []*domain.Goal{
		{ID: "receita", OwnerID: ownerID, Type: domain.GoalTypeRevenue, CurrentAmount: 80, IsProductSpecific: true, ProductID: stringPtr("p1")},
		{ID: "lucro", OwnerID: ownerID, Type: domain.GoalTypeProfit, CurrentAmount: 10, IsProductSpecific: true, ProductID: stringPtr("p1")},
	}

	productRepo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(product, nil)
	goalRepo.EXPECT().ListGoals(gomock.Any(), ownerID, gomock.Any()).Return(goals, nil)
	goalRepo.EXPECT().UpdateCurrentAmount(gomock.Any(), "lucro", 56.0).Return(nil)

	result, err := service.RefreshProductGoals(context.Background(), ownerID, "p1")
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.Equal(t, 56.0, result.Goals[1].CurrentAmount)
}

func TestService_SyncGoals(t *testing.T) {
	t.Run("Snapshot ausente deve ser rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, _ := newTestService(ctrl)

		_, err := service.SyncGoals(context.Background(), ownerID, nil)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Erro ao listar metas deve ser propagado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, goalRepo, _ := newTestService(ctrl)
		goalRepo.EXPECT().ListGoals(gomock.Any(), ownerID, domain.GoalFilters{}).Return(nil, errors.New("timeout"))

		_, err := service.SyncGoals(context.Background(), ownerID, &domain.DashboardSnapshot{})
		assert.Error(t, err)
	})
}
