package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/pkg/log"
	"github.com/vfg2006/shop-ops-api/pkg/utils"
)

const initialEntryNote = "Initial entry"

type Inventory interface {
	ListProducts(ctx context.Context, ownerID int) ([]*domain.Product, error)
	GetProduct(ctx context.Context, ownerID int, productID string) (*domain.Product, error)
	CreateProduct(ctx context.Context, ownerID int, req *domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, ownerID int, productID string, req *domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, ownerID int, productID string) error

	ListSales(ctx context.Context, ownerID int, productID string) ([]domain.SaleRecord, error)
	AddSale(ctx context.Context, ownerID int, productID string, req *domain.SaleRequest) (*domain.Product, error)
	UpdateSale(ctx context.Context, ownerID int, productID, saleID string, req *domain.SaleRequest) (*domain.Product, error)
	DeleteSale(ctx context.Context, ownerID int, productID, saleID string) (*domain.Product, error)
}

// DashboardInvalidator é notificado a cada alteração de produto ou venda
type DashboardInvalidator interface {
	InvalidateOwner(ctx context.Context, ownerID int)
}

type Service struct {
	productRepository repository.ProductRepository
	invalidator       DashboardInvalidator
	now               func() time.Time
}

func NewService(productRepo repository.ProductRepository, invalidator DashboardInvalidator) *Service {
	return &Service{
		productRepository: productRepo,
		invalidator:       invalidator,
		now:               time.Now,
	}
}

func (s *Service) ListProducts(ctx context.Context, ownerID int) ([]*domain.Product, error) {
	products, err := s.productRepository.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar produtos: %w", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, ownerID int, productID string) (*domain.Product, error) {
	product, err := s.productRepository.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produto: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.OwnerID != ownerID {
		return nil, ErrProductNotAuthorized
	}
	return product, nil
}

// CreateProduct cria o produto. Unidades iniciais viram uma venda de entrada pelo preço base.
func (s *Service) CreateProduct(ctx context.Context, ownerID int, req *domain.CreateProductRequest) (*domain.Product, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar id do produto: %w", err)
	}

	product := &domain.Product{
		ID:             id,
		OwnerID:        ownerID,
		Name:           req.Name,
		Variant:        req.Variant,
		Supplier:       req.Supplier,
		UnitCost:       req.UnitCost,
		BasePrice:      req.BasePrice,
		Fees:           req.Fees,
		SourcingStatus: domain.SourcingStatusInProgress,
		SalesHistory:   []domain.SaleRecord{},
	}
	if req.SourcingStatus != nil {
		product.SourcingStatus = *req.SourcingStatus
	}

	now := s.now()
	if req.UnitsSold > 0 {
		product.AddSale(domain.SaleRecord{
			Date:      now,
			UnitsSold: req.UnitsSold,
			Revenue:   req.BasePrice * float64(req.UnitsSold),
			Notes:     initialEntryNote,
		}, now)
	}
	product.RecalculateTotals()

	created, err := s.productRepository.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar produto: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return created, nil
}

// UpdateProduct altera os dados descritivos e de preço. Os totais são sempre recalculados do histórico.
func (s *Service) UpdateProduct(ctx context.Context, ownerID int, productID string, req *domain.UpdateProductRequest) (*domain.Product, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Variant != nil {
		product.Variant = req.Variant
	}
	if req.Supplier != nil {
		product.Supplier = req.Supplier
	}
	if req.UnitCost != nil {
		product.UnitCost = *req.UnitCost
	}
	if req.BasePrice != nil {
		product.BasePrice = *req.BasePrice
	}
	if req.Fees != nil {
		product.Fees = *req.Fees
	}
	if req.SourcingStatus != nil {
		product.SourcingStatus = *req.SourcingStatus
	}

	product.RecalculateTotals()

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("erro ao atualizar produto: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, ownerID int, productID string) error {
	if _, err := s.GetProduct(ctx, ownerID, productID); err != nil {
		return err
	}

	if err := s.productRepository.DeleteProduct(ctx, productID); err != nil {
		return fmt.Errorf("erro ao remover produto: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return nil
}

// ListSales retorna o histórico de vendas da mais recente para a mais antiga
func (s *Service) ListSales(ctx context.Context, ownerID int, productID string) ([]domain.SaleRecord, error) {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	sales := make([]domain.SaleRecord, len(product.SalesHistory))
	copy(sales, product.SalesHistory)

	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].Date.After(sales[j].Date)
	})

	return sales, nil
}

func (s *Service) AddSale(ctx context.Context, ownerID int, productID string, req *domain.SaleRequest) (*domain.Product, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sale := saleFromRequest(product, req, now)
	sale.TransactionID = req.TransactionID
	added := product.AddSale(sale, now)

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("erro ao registrar venda: %w", err)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"product_id":     product.ID,
		"sale_id":        added.ID,
		"transaction_id": added.TransactionID,
	}).Debug("inventário: venda registrada")

	s.invalidate(ctx, ownerID)
	return product, nil
}

// UpdateSale altera a venda localizada pelo id interno ou pelo transaction_id
func (s *Service) UpdateSale(ctx context.Context, ownerID int, productID, saleID string, req *domain.SaleRequest) (*domain.Product, error) {
	if err := domain.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	patch := saleFromRequest(product, req, time.Time{})
	if _, found := product.UpdateSale(saleID, patch); !found {
		return nil, ErrSaleNotFound
	}

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("erro ao atualizar venda: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return product, nil
}

func (s *Service) DeleteSale(ctx context.Context, ownerID int, productID, saleID string) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if !product.DeleteSale(saleID) {
		return nil, ErrSaleNotFound
	}

	if err := s.productRepository.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("erro ao remover venda: %w", err)
	}

	s.invalidate(ctx, ownerID)
	return product, nil
}

// saleFromRequest monta a venda. Sem receita informada usa preço base × unidades.
// Sem data usa defaultDate; data zero mantém a data atual na edição.
func saleFromRequest(product *domain.Product, req *domain.SaleRequest, defaultDate time.Time) domain.SaleRecord {
	sale := domain.SaleRecord{
		Date:      defaultDate,
		UnitsSold: req.UnitsSold,
		Revenue:   product.BasePrice * float64(req.UnitsSold),
		Notes:     req.Notes,
	}
	if req.Date != nil {
		sale.Date = *req.Date
	}
	if req.Revenue != nil {
		sale.Revenue = *req.Revenue
	}
	return sale
}

func (s *Service) invalidate(ctx context.Context, ownerID int) {
	if s.invalidator != nil {
		s.invalidator.InvalidateOwner(ctx, ownerID)
	}
}
