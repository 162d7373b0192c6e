package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/log"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
)

type GoalTracker interface {
	ListGoals(ctx context.Context, ownerID int, filters domain.GoalFilters) ([]*domain.Goal, error)
	GetProductGoals(ctx context.Context, ownerID int, productID string) ([]*domain.Goal, error)
	GetStoreGoals(ctx context.Context, ownerID int) ([]*domain.Goal, error)
	GetGoalsStatus(ctx context.Context, ownerID int) ([]*domain.GoalWithProgress, error)
	CreateGoal(ctx context.Context, ownerID int, req *domain.CreateGoalRequest) (*domain.Goal, error)
	UpdateGoal(ctx context.Context, ownerID int, goalID string, req *domain.UpdateGoalRequest) (*domain.Goal, error)
	DeleteGoal(ctx context.Context, ownerID int, goalID string) error
	UpdateProgress(ctx context.Context, ownerID int, goalID string, req *domain.UpdateGoalProgressRequest) (*domain.Goal, error)
	RefreshProductGoals(ctx context.Context, ownerID int, productID string) (*domain.GoalSyncResult, error)
	SyncGoals(ctx context.Context, ownerID int, snapshot *domain.DashboardSnapshot) (*domain.GoalSyncResult, error)
}

// Metas criadas na primeira consulta de um produto sem metas
var defaultProductGoals = []struct {
	name   string
	kind   domain.GoalType
	target float64
}{
	{name: "Monthly Revenue Target", kind: domain.GoalTypeRevenue, target: 10000},
	{name: "Monthly Sales Target", kind: domain.GoalTypeSales, target: 1000},
	{name: "Monthly Profit Target", kind: domain.GoalTypeProfit, target: 4000},
}

type Service struct {
	goalRepository    repository.GoalRepository
	productRepository repository.ProductRepository
	syncer            *Syncer
	now               func() time.Time
}

func NewService(goalRepo repository.GoalRepository, productRepo repository.ProductRepository) *Service {
	return &Service{
		goalRepository:    goalRepo,
		productRepository: productRepo,
		syncer:            NewSyncer(goalRepo),
		now:               time.Now,
	}
}

func (s *Service) ListGoals(ctx context.Context, ownerID int, filters domain.GoalFilters) ([]*domain.Goal, error) {
	goals, err := s.goalRepository.ListGoals(ctx, ownerID, filters)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar metas: %w", err)
	}
	return goals, nil
}

// GetProductGoals retorna as metas do produto, criando as metas padrão quando ainda não existem
func (s *Service) GetProductGoals(ctx context.Context, ownerID int, productID string) ([]*domain.Goal, error) {
	if _, err := s.ownedProduct(ctx, ownerID, productID); err != nil {
		return nil, err
	}

	goals, err := s.listProductGoals(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if len(goals) > 0 {
		return goals, nil
	}

	defaults, err := s.buildDefaultGoals(ownerID, productID)
	if err != nil {
		return nil, err
	}

	if err := s.goalRepository.CreateGoals(ctx, defaults); err != nil {
		return nil, fmt.Errorf("erro ao criar metas padrão do produto %s: %w", productID, err)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"product_id": productID,
		"goals":      len(defaults),
	}).Info("metas: metas padrão criadas para o produto")

	return defaults, nil
}

func (s *Service) GetStoreGoals(ctx context.Context, ownerID int) ([]*domain.Goal, error) {
	storeWide := false
	return s.ListGoals(ctx, ownerID, domain.GoalFilters{IsProductSpecific: &storeWide})
}

// GetGoalsStatus calcula o progresso de todas as metas com os totais acumulados dos produtos
func (s *Service) GetGoalsStatus(ctx context.Context, ownerID int) ([]*domain.GoalWithProgress, error) {
	goals, err := s.ListGoals(ctx, ownerID, domain.GoalFilters{})
	if err != nil {
		return nil, err
	}

	products, err := s.productRepository.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}

	byID := make(map[string]*domain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}
	store := StoreMetricsFromProducts(products)

	result := make([]*domain.GoalWithProgress, 0, len(goals))
	for _, goal := range goals {
		progress := ComputeProgress(goal, MetricsForGoal(goal, store, byID))

		withProgress := *goal
		withProgress.CurrentAmount = progress.CurrentAmount

		result = append(result, &domain.GoalWithProgress{
			Goal:               &withProgress,
			ProgressPercentage: progress.ProgressPercentage,
			Status:             progress.Status,
		})
	}

	return result, nil
}

func (s *Service) CreateGoal(ctx context.Context, ownerID int, req *domain.CreateGoalRequest) (*domain.Goal, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	goal := &domain.Goal{
		OwnerID:           ownerID,
		Name:              req.Name,
		Type:              req.Type,
		TargetAmount:      req.TargetAmount,
		CurrentAmount:     req.CurrentAmount,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		IsProductSpecific: req.IsProductSpecific,
	}

	if req.IsProductSpecific {
		if _, err := s.ownedProduct(ctx, ownerID, *req.ProductID); err != nil {
			return nil, err
		}
		goal.ProductID = req.ProductID
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar id da meta: %w", err)
	}
	goal.ID = id

	created, err := s.goalRepository.CreateGoal(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar meta: %w", err)
	}

	return created, nil
}

func (s *Service) UpdateGoal(ctx context.Context, ownerID int, goalID string, req *domain.UpdateGoalRequest) (*domain.Goal, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	goal, err := s.ownedGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.Type != nil {
		goal.Type = *req.Type
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.StartDate != nil {
		goal.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		goal.EndDate = *req.EndDate
	}
	if req.IsProductSpecific != nil {
		goal.IsProductSpecific = *req.IsProductSpecific
	}
	if req.ProductID != nil {
		goal.ProductID = req.ProductID
		if *req.ProductID == "" {
			goal.ProductID = nil
		}
	}

	if goal.EndDate.Before(goal.StartDate) {
		return nil, domain.NewValidationError("end_date", "deve ser igual ou posterior à data de início")
	}

	if goal.IsProductSpecific {
		if goal.ProductID == nil {
			return nil, domain.NewValidationError("product_id", "campo obrigatório")
		}
		if _, err := s.ownedProduct(ctx, ownerID, *goal.ProductID); err != nil {
			return nil, err
		}
	} else {
		goal.ProductID = nil
	}

	if err := s.goalRepository.UpdateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("erro ao atualizar meta: %w", err)
	}

	return goal, nil
}

func (s *Service) DeleteGoal(ctx context.Context, ownerID int, goalID string) error {
	if _, err := s.ownedGoal(ctx, ownerID, goalID); err != nil {
		return err
	}

	if err := s.goalRepository.DeleteGoal(ctx, goalID); err != nil {
		return fmt.Errorf("erro ao remover meta: %w", err)
	}

	return nil
}

// UpdateProgress sobrescreve manualmente o valor atual da meta
func (s *Service) UpdateProgress(ctx context.Context, ownerID int, goalID string, req *domain.UpdateGoalProgressRequest) (*domain.Goal, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	goal, err := s.ownedGoal(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	if err := s.goalRepository.UpdateCurrentAmount(ctx, goalID, *req.CurrentAmount); err != nil {
		return nil, fmt.Errorf("erro ao atualizar progresso da meta: %w", err)
	}

	goal.CurrentAmount = *req.CurrentAmount
	goal.UpdatedAt = s.now()

	return goal, nil
}

// RefreshProductGoals recalcula as metas do produto com os campos atuais do produto
func (s *Service) RefreshProductGoals(ctx context.Context, ownerID int, productID string) (*domain.GoalSyncResult, error) {
	product, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	goals, err := s.listProductGoals(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	result := s.syncer.SyncWithMetrics(ctx, goals, ProductMetrics(product))
	return &result, nil
}

// SyncGoals sincroniza as metas da loja com o snapshot do dashboard
func (s *Service) SyncGoals(ctx context.Context, ownerID int, snapshot *domain.DashboardSnapshot) (*domain.GoalSyncResult, error) {
	if snapshot == nil {
		return nil, domain.NewValidationError("snapshot", "campo obrigatório")
	}

	goals, err := s.ListGoals(ctx, ownerID, domain.GoalFilters{})
	if err != nil {
		return nil, err
	}

	result := s.syncer.SyncWithDashboard(ctx, goals, snapshot)

	if len(result.Failures) > 0 {
		log.ForContext(ctx).WithField("failures", len(result.Failures)).Warn("metas: sincronização concluída com falhas")
	}

	return &result, nil
}

func (s *Service) listProductGoals(ctx context.Context, ownerID int, productID string) ([]*domain.Goal, error) {
	productSpecific := true
	return s.ListGoals(ctx, ownerID, domain.GoalFilters{
		IsProductSpecific: &productSpecific,
		ProductID:         &productID,
	})
}

func (s *Service) buildDefaultGoals(ownerID int, productID string) ([]*domain.Goal, error) {
	start := s.now()
	end := start.AddDate(0, 1, 0)

	goals := make([]*domain.Goal, 0, len(defaultProductGoals))
	for _, def := range defaultProductGoals {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, fmt.Errorf("erro ao gerar id da meta: %w", err)
		}

		pid := productID
		goals = append(goals, &domain.Goal{
			ID:                id,
			OwnerID:           ownerID,
			ProductID:         &pid,
			Name:              def.name,
			Type:              def.kind,
			TargetAmount:      def.target,
			StartDate:         start,
			EndDate:           end,
			IsProductSpecific: true,
		})
	}

	return goals, nil
}

func (s *Service) ownedGoal(ctx context.Context, ownerID int, goalID string) (*domain.Goal, error) {
	goal, err := s.goalRepository.GetGoalByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar meta: %w", err)
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if goal.OwnerID != ownerID {
		return nil, ErrGoalNotAuthorized
	}
	return goal, nil
}

func (s *Service) ownedProduct(ctx context.Context, ownerID int, productID string) (*domain.Product, error) {
	product, err := s.productRepository.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produto: %w", err)
	}
	if product == nil || product.OwnerID != ownerID {
		return nil, ErrProductNotFound
	}
	return product, nil
}
