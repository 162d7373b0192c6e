package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct() *Product {
	return &Product{
		ID:        "PRD001",
		Name:      "Caneca",
		UnitCost:  2,
		BasePrice: 10,
		Fees:      1,
		SalesHistory: []SaleRecord{
			{ID: "a1", TransactionID: "1700000000001", Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), UnitsSold: 5, Revenue: 50},
			{ID: "b2", TransactionID: "1700000000002", Date: time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), UnitsSold: 3, Revenue: 30},
			{ID: "c3", TransactionID: "manual-3", Date: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC), UnitsSold: 2, Revenue: 25},
		},
	}
}

func TestProduct_FindSale(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantIndex  int
		wantFound  bool
	}{
		{name: "Busca pelo ID interno", identifier: "b2", wantIndex: 1, wantFound: true},
		{name: "Busca pelo transaction_id", identifier: "1700000000002", wantIndex: 1, wantFound: true},
		{name: "Busca pelo transaction_id não numérico", identifier: "manual-3", wantIndex: 2, wantFound: true},
		{name: "Busca numérica com zeros à esquerda", identifier: "01700000000001", wantIndex: 0, wantFound: true},
		{name: "Identificador inexistente", identifier: "zz", wantIndex: -1, wantFound: false},
		{name: "Identificador vazio", identifier: "  ", wantIndex: -1, wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := newTestProduct()
			idx, found := product.FindSale(tt.identifier)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantIndex, idx)
		})
	}
}

func TestProduct_FindSale_AmbosIdentificadoresResolvemMesmoRegistro(t *testing.T) {
	product := newTestProduct()

	byID, found := product.FindSale("a1")
	require.True(t, found)

	byTransaction, found := product.FindSale("1700000000001")
	require.True(t, found)

	assert.Equal(t, byID, byTransaction)
}

func TestProduct_UpdateSale_PreservaIdentificadores(t *testing.T) {
	for _, identifier := range []string{"a1", "1700000000001"} {
		t.Run(identifier, func(t *testing.T) {
			product := newTestProduct()

			updated, ok := product.UpdateSale(identifier, SaleRecord{
				ID:            "outro-id",
				TransactionID: "outro-transaction",
				UnitsSold:     7,
				Revenue:       70,
			})
			require.True(t, ok)

			assert.Equal(t, "a1", updated.ID)
			assert.Equal(t, "1700000000001", updated.TransactionID)
			assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), updated.Date)
			assert.Equal(t, 12, product.UnitsSold)
			assert.Equal(t, 125.0, product.TotalSales)
		})
	}
}

func TestProduct_UpdateSale_PreservaDataInvalida(t *testing.T) {
	product := newTestProduct()
	product.SalesHistory[1].Date = time.Time{}
	product.SalesHistory[1].RawDate = "ontem"

	updated, ok := product.UpdateSale("b2", SaleRecord{UnitsSold: 4, Revenue: 40})
	require.True(t, ok)
	assert.True(t, updated.Date.IsZero())
	assert.Equal(t, "ontem", updated.RawDate)

	newDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	updated, ok = product.UpdateSale("b2", SaleRecord{Date: newDate, UnitsSold: 4, Revenue: 40})
	require.True(t, ok)
	assert.Equal(t, newDate, updated.Date)
	assert.Empty(t, updated.RawDate)
}

func TestProduct_DeleteSale_RecalculaTotais(t *testing.T) {
	product := newTestProduct()
	product.RecalculateTotals()
	require.Equal(t, 10, product.UnitsSold)

	ok := product.DeleteSale("b2")
	require.True(t, ok)

	assert.Len(t, product.SalesHistory, 2)
	assert.Equal(t, 7, product.UnitsSold)
	assert.Equal(t, 75.0, product.TotalSales)

	// (75 - 2*7 - 1*7) / 75 * 100
	assert.InDelta(t, 72.0, product.ProfitMargin, 0.0001)
}

func TestProduct_AddSale(t *testing.T) {
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Gera transaction_id a partir do timestamp", func(t *testing.T) {
		product := &Product{UnitCost: 2, BasePrice: 10}
		sale := product.AddSale(SaleRecord{Date: now, UnitsSold: 1, Revenue: 10}, now)

		assert.NotEmpty(t, sale.ID)
		assert.Equal(t, "1706788800000", sale.TransactionID)
		assert.Equal(t, 1, product.UnitsSold)
		assert.Equal(t, 10.0, product.TotalSales)
	})

	t.Run("Mantém transaction_id informado", func(t *testing.T) {
		product := &Product{}
		sale := product.AddSale(SaleRecord{Date: now, UnitsSold: 1, TransactionID: "pedido-9"}, now)

		assert.Equal(t, "pedido-9", sale.TransactionID)
	})
}

func TestProduct_RecalculateTotals_SemReceita(t *testing.T) {
	product := &Product{UnitCost: 2, ProfitMargin: 40, UnitsSold: 9, TotalSales: 90}
	product.RecalculateTotals()

	assert.Equal(t, 0, product.UnitsSold)
	assert.Equal(t, 0.0, product.TotalSales)
	assert.Equal(t, 0.0, product.ProfitMargin)
}

func TestProduct_TotalsDrifted(t *testing.T) {
	product := newTestProduct()
	assert.True(t, product.TotalsDrifted())

	product.RecalculateTotals()
	assert.False(t, product.TotalsDrifted())

	product.TotalSales += 1
	assert.True(t, product.TotalsDrifted())
}
