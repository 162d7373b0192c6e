// Package scheduler contém os serviços de agendamento de manutenção dos dados
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/config"
	"github.com/vfg2006/shop-ops-api/internal/domain"
)

type ProductTotalsReconcileConfig struct {
	CronSchedule      string
	MaxConcurrentJobs int
	Enabled           bool
}

// DashboardInvalidator descarta o cache do dashboard dos proprietários corrigidos
type DashboardInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID int)
}

// ReconcileResult resume uma execução da reconciliação
type ReconcileResult struct {
	ProductsChecked int
	ProductsFixed   int
	ProductsSkipped int
	OwnersFixed     []int
	FailedOwners    []int
}

// ProductTotalsReconcileService recalcula periodicamente os totais derivados dos produtos
// (unidades, faturamento e margem) a partir do histórico de vendas.
type ProductTotalsReconcileService struct {
	scheduler           *gocron.Scheduler
	productRepo         repository.ProductRepository
	invalidator         DashboardInvalidator
	config              ProductTotalsReconcileConfig
	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastResult          *ReconcileResult
}

func NewProductTotalsReconcileService(
	productRepo repository.ProductRepository,
	invalidator DashboardInvalidator,
	cfg *config.Config,
) *ProductTotalsReconcileService {
	reconcileConfig := ProductTotalsReconcileConfig{
		CronSchedule:      cfg.ProductTotalsReconcile.CronSchedule,
		MaxConcurrentJobs: cfg.ProductTotalsReconcile.MaxConcurrentJobs,
		Enabled:           cfg.ProductTotalsReconcile.Enabled,
	}

	if reconcileConfig.MaxConcurrentJobs <= 0 {
		reconcileConfig.MaxConcurrentJobs = 1
	}

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       reconcileConfig.CronSchedule,
		"max_concurrent_jobs": reconcileConfig.MaxConcurrentJobs,
	}).Info("Configuração do agendador de reconciliação de totais carregada")

	return &ProductTotalsReconcileService{
		scheduler:   gocron.NewScheduler(time.Local),
		productRepo: productRepo,
		invalidator: invalidator,
		config:      reconcileConfig,
	}
}

func (s *ProductTotalsReconcileService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Cron de reconciliação de totais desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de reconciliação de totais dos produtos")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if _, err := s.Reconcile(ctx); err != nil {
			logrus.WithError(err).Error("Erro na reconciliação de totais dos produtos")
		}
	})
	if err != nil {
		return errors.Wrap(err, "erro ao agendar reconciliação de totais")
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de reconciliação de totais")
		s.scheduler.Stop()
	}()

	return nil
}

// Reconcile corrige os produtos cujos totais divergem do histórico.
// Retorna nil quando outra execução já está em andamento.
func (s *ProductTotalsReconcileService) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Warn("Reconciliação de totais já está em execução")
		return nil, nil
	}
	s.syncRunning = true
	s.lastSyncStartedAt = time.Now()
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.lastSyncCompletedAt = time.Now()
		s.syncMutex.Unlock()
	}()

	logrus.Info("Iniciando reconciliação de totais dos produtos")

	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar produtos para reconciliação")
	}

	result := s.processOwners(ctx, groupByOwner(products))
	result.ProductsChecked = len(products)

	s.syncMutex.Lock()
	s.lastResult = result
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"products_checked": result.ProductsChecked,
		"products_fixed":   result.ProductsFixed,
		"products_skipped": result.ProductsSkipped,
		"owners_fixed":     len(result.OwnersFixed),
		"failed_owners":    len(result.FailedOwners),
	}).Info("Reconciliação de totais concluída")

	return result, nil
}

func (s *ProductTotalsReconcileService) processOwners(ctx context.Context, byOwner map[int][]*domain.Product) *ReconcileResult {
	result := &ReconcileResult{
		OwnersFixed:  make([]int, 0),
		FailedOwners: make([]int, 0),
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, s.config.MaxConcurrentJobs)
	)

	for ownerID, products := range byOwner {
		wg.Add(1)
		sem <- struct{}{}

		go func(ownerID int, products []*domain.Product) {
			defer wg.Done()
			defer func() { <-sem }()

			fixed, skipped, err := s.reconcileOwner(ctx, ownerID, products)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				logrus.WithError(err).WithField("owner_id", ownerID).Error("Erro ao reconciliar totais do proprietário")
				result.FailedOwners = append(result.FailedOwners, ownerID)
				return
			}

			result.ProductsSkipped += skipped
			if fixed > 0 {
				result.ProductsFixed += fixed
				result.OwnersFixed = append(result.OwnersFixed, ownerID)
			}
		}(ownerID, products)
	}

	wg.Wait()

	sort.Ints(result.OwnersFixed)
	sort.Ints(result.FailedOwners)

	return result
}

// reconcileOwner retorna os produtos corrigidos e os ignorados por terem sido alterados durante a execução
func (s *ProductTotalsReconcileService) reconcileOwner(ctx context.Context, ownerID int, products []*domain.Product) (int, int, error) {
	drifted := make([]*domain.Product, 0)
	for _, product := range products {
		if !product.TotalsDrifted() {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"owner_id":    ownerID,
			"product_id":  product.ID,
			"units_sold":  product.UnitsSold,
			"total_sales": product.TotalSales,
		}).Debug("Totais divergentes do histórico de vendas")

		product.RecalculateTotals()
		drifted = append(drifted, product)
	}

	if len(drifted) == 0 {
		return 0, 0, nil
	}

	updated, err := s.productRepo.UpdateProductTotals(ctx, drifted)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "erro ao gravar totais do proprietário %d", ownerID)
	}

	if updated > 0 && s.invalidator != nil {
		s.invalidator.InvalidateOwner(ctx, ownerID)
	}

	return updated, len(drifted) - updated, nil
}

func groupByOwner(products []*domain.Product) map[int][]*domain.Product {
	byOwner := make(map[int][]*domain.Product)
	for _, product := range products {
		if product == nil {
			continue
		}
		byOwner[product.OwnerID] = append(byOwner[product.OwnerID], product)
	}
	return byOwner
}

// TriggerManualSync inicia manualmente uma reconciliação em segundo plano
func (s *ProductTotalsReconcileService) TriggerManualSync() {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Reconciliação de totais já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.Info("Iniciando reconciliação manual de totais dos produtos")
	go func() {
		if _, err := s.Reconcile(context.Background()); err != nil {
			logrus.WithError(err).Error("Erro na reconciliação manual de totais")
		}
	}()
}

// GetStatus retorna o status atual do agendador
func (s *ProductTotalsReconcileService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.Enabled,
		"sync_cron":              s.config.CronSchedule,
		"sync_running":           s.syncRunning,
		"max_concurrent_jobs":    s.config.MaxConcurrentJobs,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}

	if s.lastResult != nil {
		status["last_products_checked"] = s.lastResult.ProductsChecked
		status["last_products_fixed"] = s.lastResult.ProductsFixed
		status["last_products_skipped"] = s.lastResult.ProductsSkipped
	}

	return status
}
