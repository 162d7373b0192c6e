package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/shop-ops-api/infrastructure/repository"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"github.com/vfg2006/shop-ops-api/internal/usecases/insighting"
)

type RankingService interface {
	GetProductRanking(ctx context.Context, ownerID int, timeframe string) (*domain.ProductRankingResponse, error)
}

type ProductRankingService struct {
	productRepository repository.ProductRepository
	now               func() time.Time
}

func NewProductRankingService(productRepository repository.ProductRepository) *ProductRankingService {
	return &ProductRankingService{
		productRepository: productRepository,
		now:               time.Now,
	}
}

// GetProductRanking ordena os produtos pelo faturamento do período e compara com o período anterior
func (s *ProductRankingService) GetProductRanking(ctx context.Context, ownerID int, timeframe string) (*domain.ProductRankingResponse, error) {
	products, err := s.productRepository.ListProducts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar produtos: %w", err)
	}

	period := insighting.ResolvePeriod(timeframe, s.now())
	previous := period.Previous()

	current := make([]*domain.ProductRankingItem, 0, len(products))
	before := make([]*domain.ProductRankingItem, 0, len(products))

	for _, product := range products {
		item := &domain.ProductRankingItem{ProductID: product.ID, ProductName: product.Name}
		previousItem := &domain.ProductRankingItem{ProductID: product.ID, ProductName: product.Name}

		for _, sale := range product.SalesHistory {
			switch {
			case sale.Date.IsZero():
				continue
			case period.Contains(sale.Date):
				item.Revenue += sale.Revenue
				item.UnitsSold += sale.UnitsSold
			case !sale.Date.Before(previous.StartDate) && sale.Date.Before(previous.EndDate):
				previousItem.Revenue += sale.Revenue
				previousItem.UnitsSold += sale.UnitsSold
			}
		}

		current = append(current, item)
		if previousItem.Revenue > 0 {
			before = append(before, previousItem)
		}
	}

	sortByRevenue(before)
	rankingsBefore := make(map[string]*domain.ProductRankingItem, len(before))
	for i, item := range before {
		item.Position = i + 1
		rankingsBefore[item.ProductID] = item
	}

	updatePositions(current, rankingsBefore)

	ranking := make([]domain.ProductRankingItem, 0, len(current))
	for _, item := range current {
		ranking = append(ranking, *item)
	}

	return &domain.ProductRankingResponse{
		Timeframe: period.Timeframe,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Ranking:   ranking,
	}, nil
}

func sortByRevenue(items []*domain.ProductRankingItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Revenue == items[j].Revenue {
			return items[i].ProductName < items[j].ProductName
		}
		return items[i].Revenue > items[j].Revenue
	})
}

func updatePositions(rankings []*domain.ProductRankingItem, rankingsBefore map[string]*domain.ProductRankingItem) {
	sortByRevenue(rankings)

	for i, ranking := range rankings {
		ranking.Position = i + 1

		rankingBefore, exists := rankingsBefore[ranking.ProductID]
		if exists {
			ranking.PositionChange = rankingBefore.Position - ranking.Position
			ranking.PreviousPosition = rankingBefore.Position
		}
	}
}
