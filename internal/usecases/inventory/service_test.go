package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/shop-ops-api/infrastructure/repository/mocks"
	"github.com/vfg2006/shop-ops-api/internal/domain"
	"go.uber.org/mock/gomock"
)

const ownerID = 3

var referenceNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

type invalidatorSpy struct {
	owners []int
}

func (s *invalidatorSpy) InvalidateOwner(_ context.Context, ownerID int) {
	s.owners = append(s.owners, ownerID)
}

func newTestService(ctrl *gomock.Controller) (*Service, *mocks.MockProductRepository, *invalidatorSpy) {
	repo := mocks.NewMockProductRepository(ctrl)
	spy := &invalidatorSpy{}

	service := NewService(repo, spy)
	service.now = func() time.Time { return referenceNow }

	return service, repo, spy
}

func floatPtr(f float64) *float64 {
	return &f
}

func productWithHistory() *domain.Product {
	product := &domain.Product{
		ID:        "p1",
		OwnerID:   ownerID,
		Name:      "Caneca",
		UnitCost:  2,
		BasePrice: 10,
		Fees:      1,
		SalesHistory: []domain.SaleRecord{
			{ID: "a1", Date: referenceNow.AddDate(0, 0, -3), UnitsSold: 5, Revenue: 50, TransactionID: "1700000000001"},
			{ID: "a2", Date: referenceNow.AddDate(0, 0, -1), UnitsSold: 3, Revenue: 30, TransactionID: "1700000000002"},
			{ID: "a3", Date: referenceNow.AddDate(0, 0, -2), UnitsSold: 2, Revenue: 25, TransactionID: "tx-3"},
		},
	}
	product.RecalculateTotals()
	return product
}

func TestService_CreateProduct(t *testing.T) {
	t.Run("Unidades iniciais viram venda de entrada", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, repo, spy := newTestService(ctrl)
		repo.EXPECT().CreateProduct(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p *domain.Product) (*domain.Product, error) {
			return p, nil
		})

		product, err := service.CreateProduct(context.Background(), ownerID, &domain.CreateProductRequest{
			Name: "Caneca", UnitCost: 2, BasePrice: 10, Fees: 1, UnitsSold: 4,
		})
		require.NoError(t, err)

		require.Len(t, product.SalesHistory, 1)
		assert.Equal(t, "Initial entry", product.SalesHistory[0].Notes)
		assert.Equal(t, 40.0, product.SalesHistory[0].Revenue)
		assert.Equal(t, "1706788800000", product.SalesHistory[0].TransactionID)
		assert.Equal(t, 4, product.UnitsSold)
		assert.Equal(t, 40.0, product.TotalSales)
		assert.InDelta(t, 70.0, product.ProfitMargin, 0.0001)
		assert.Equal(t, domain.SourcingStatusInProgress, product.SourcingStatus)
		assert.Equal(t, []int{ownerID}, spy.owners)
	})

	t.Run("Nome ausente deve ser rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		service, _, spy := newTestService(ctrl)

		_, err := service.CreateProduct(context.Background(), ownerID, &domain.CreateProductRequest{UnitCost: 2})

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "name")
		assert.Empty(t, spy.owners)
	})
}

func TestService_UpdateProduct_RecalculaTotais(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, _ := newTestService(ctrl)

	stored := productWithHistory()
	stored.UnitsSold = 999
	stored.TotalSales = 1

	repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(stored, nil)
	repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)

	product, err := service.UpdateProduct(context.Background(), ownerID, "p1", &domain.UpdateProductRequest{UnitCost: floatPtr(4)})
	require.NoError(t, err)

	assert.Equal(t, 10, product.UnitsSold)
	assert.Equal(t, 105.0, product.TotalSales)
	assert.InDelta(t, (105.0-50.0)/105.0*100, product.ProfitMargin, 0.0001)
}

func TestService_GetProduct(t *testing.T) {
	tests := []struct {
		name    string
		stored  *domain.Product
		wantErr error
	}{
		{name: "Produto inexistente", stored: nil, wantErr: ErrProductNotFound},
		{name: "Produto de outro proprietário", stored: &domain.Product{ID: "p1", OwnerID: 42}, wantErr: ErrProductNotAuthorized},
		{name: "Produto do proprietário", stored: &domain.Product{ID: "p1", OwnerID: ownerID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, repo, _ := newTestService(ctrl)
			repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(tt.stored, nil)

			product, err := service.GetProduct(context.Background(), ownerID, "p1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "p1", product.ID)
		})
	}
}

func TestService_ListSales_MaisRecentePrimeiro(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, _ := newTestService(ctrl)
	repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(productWithHistory(), nil)

	sales, err := service.ListSales(context.Background(), ownerID, "p1")
	require.NoError(t, err)
	require.Len(t, sales, 3)

	assert.Equal(t, "a2", sales[0].ID)
	assert.Equal(t, "a3", sales[1].ID)
	assert.Equal(t, "a1", sales[2].ID)
}

func TestService_AddSale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, spy := newTestService(ctrl)
	repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(productWithHistory(), nil)
	repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)

	product, err := service.AddSale(context.Background(), ownerID, "p1", &domain.SaleRequest{UnitsSold: 2})
	require.NoError(t, err)

	require.Len(t, product.SalesHistory, 4)
	added := product.SalesHistory[3]
	assert.Equal(t, 20.0, added.Revenue)
	assert.Equal(t, referenceNow, added.Date)
	assert.Equal(t, "1706788800000", added.TransactionID)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, 12, product.UnitsSold)
	assert.Equal(t, 125.0, product.TotalSales)
	assert.Equal(t, []int{ownerID}, spy.owners)
}

func TestService_UpdateSale(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    error
	}{
		{name: "Pelo id interno", identifier: "a1"},
		{name: "Pelo transaction_id", identifier: "1700000000001"},
		{name: "Identificador inexistente", identifier: "nao-existe", wantErr: ErrSaleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service, repo, _ := newTestService(ctrl)
			repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(productWithHistory(), nil)
			if tt.wantErr == nil {
				repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)
			}

			product, err := service.UpdateSale(context.Background(), ownerID, "p1", tt.identifier, &domain.SaleRequest{
				UnitsSold: 6,
				Revenue:   floatPtr(66),
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			sale := product.SalesHistory[0]
			assert.Equal(t, "a1", sale.ID)
			assert.Equal(t, "1700000000001", sale.TransactionID)
			assert.Equal(t, referenceNow.AddDate(0, 0, -3), sale.Date)
			assert.Equal(t, 66.0, sale.Revenue)
			assert.Equal(t, 11, product.UnitsSold)
			assert.Equal(t, 121.0, product.TotalSales)
		})
	}
}

func TestService_DeleteSale_RecalculaTotais(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, repo, _ := newTestService(ctrl)
	repo.EXPECT().GetProductByID(gomock.Any(), "p1").Return(productWithHistory(), nil)
	repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any()).Return(nil)

	product, err := service.DeleteSale(context.Background(), ownerID, "p1", "1700000000002")
	require.NoError(t, err)

	require.Len(t, product.SalesHistory, 2)
	assert.Equal(t, 7, product.UnitsSold)
	assert.Equal(t, 75.0, product.TotalSales)
	assert.InDelta(t, 72.0, product.ProfitMargin, 0.0001)
}
